package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mulligan/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[models.Key]*models.CardRecord

func (m mapLookup) FindByKey(_ context.Context, key models.Key) (*models.CardRecord, error) {
	return m[key], nil
}

func parse(t *testing.T, s string) models.SourceCard {
	t.Helper()
	c, err := models.ParseSourceCard(json.RawMessage(s), "enUS")
	require.NoError(t, err)
	return c
}

func TestValidate(t *testing.T) {
	var verr *RecordValidationError

	err := Validate(3, parse(t, `{"id":"A1"}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Index)
	assert.Contains(t, verr.Reason, "external id")

	err = Validate(0, parse(t, `{"dbfId":"x","id":"A1"}`))
	assert.ErrorAs(t, err, &verr)

	err = Validate(0, parse(t, `{"dbfId":5}`))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "display key")

	for _, key := range []string{"../deDE/X", "a/b", `a\\b`, "..", "."} {
		err = Validate(0, models.SourceCard{ExternalID: 5, HasExternalID: true, DisplayKey: key})
		require.ErrorAs(t, err, &verr, key)
		assert.Contains(t, verr.Reason, "safe file name")
	}

	assert.NoError(t, Validate(0, parse(t, `{"dbfId":"5","id":"A1"}`)))
}

func TestReconciler_CreateAndReuse(t *testing.T) {
	imported := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	existing := &models.CardRecord{ID: "kept", ExternalID: 2, Locale: "enUS", Name: "Old", ImportedAt: imported}
	r := NewReconciler(mapLookup{{ExternalID: 2, Locale: "enUS"}: existing}, "enUS")
	r.newID = func() string { return "fresh" }
	r.now = func() time.Time { return imported.Add(time.Hour) }

	out, err := r.Reconcile(context.Background(), 0, parse(t, `{"dbfId":1,"id":"A1","rarity":"RARE"}`))
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "fresh", out.Record.ID)
	assert.Equal(t, "enUS", out.Record.Locale)
	assert.Equal(t, UnknownName, out.Record.Name)
	assert.Equal(t, "RARE", *out.Record.Rarity)
	assert.True(t, out.Record.ImportedAt.Equal(imported.Add(time.Hour)))

	out, err = r.Reconcile(context.Background(), 1, parse(t, `{"dbfId":2,"id":"A2","name":"New"}`))
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Same(t, existing, out.Record)
	assert.Equal(t, "New", out.Record.Name)
	assert.Nil(t, out.Record.Rarity)
	assert.True(t, out.Record.ImportedAt.Equal(imported))
	assert.JSONEq(t, `{"dbfId":2,"id":"A2","name":"New"}`, string(out.Record.RawPayload))
}

func TestReconciler_IdentityCache(t *testing.T) {
	r := NewReconciler(mapLookup{}, "enUS")

	first, err := r.Reconcile(context.Background(), 0, parse(t, `{"dbfId":1,"id":"A1","name":"X"}`))
	require.NoError(t, err)

	dup, err := r.Reconcile(context.Background(), 1, parse(t, `{"dbfId":1,"id":"B1","name":"Y"}`))
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)
	assert.True(t, dup.DisplayKeyChanged)
	assert.True(t, dup.Created)
	assert.Same(t, first.Record, dup.Record)
	assert.Equal(t, "Y", first.Record.Name)
	assert.Equal(t, 1, r.Cached())

	r.Reset()
	assert.Equal(t, 0, r.Cached())
	again, err := r.Reconcile(context.Background(), 2, parse(t, `{"dbfId":1,"id":"B1"}`))
	require.NoError(t, err)
	assert.False(t, again.Duplicate)
}

func TestState(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.False(t, StateDone.Failed())
	assert.True(t, StateFlushFailed.Failed())
	assert.True(t, StateCancelled.Failed())
	assert.False(t, StateStaging.Terminal())
}

func TestConfig(t *testing.T) {
	cfg := Config{BatchSize: 20, Workers: 4, SourceURL: "http://x/{locale}", AssetBackend: BackendFS}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 60*time.Second, cfg.SourceTimeout())
	assert.Equal(t, 15*time.Second, cfg.AssetTimeout())

	cfg.AssetTimeoutSeconds = 3
	assert.Equal(t, 3*time.Second, cfg.AssetTimeout())

	bad := cfg
	bad.BatchSize = 0
	assert.Error(t, bad.Validate())
	bad = cfg
	bad.AssetBackend = "ftp"
	assert.Error(t, bad.Validate())
}

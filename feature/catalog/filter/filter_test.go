package filter

import (
	"testing"

	"mulligan/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func card(ext int64, set *string) models.SourceCard {
	return models.SourceCard{ExternalID: ext, HasExternalID: true, DisplayKey: "k", SetID: set}
}

func TestApply_Standard(t *testing.T) {
	allow := NewAllowlist("v1", []string{"CORE", "EVENT"})
	records := []models.SourceCard{
		card(1, ptr("CORE")),
		card(2, ptr("OLD")),
		card(3, nil),
		card(4, ptr("EVENT")),
		card(5, ptr("CORE")),
	}

	res := Apply(records, FormatStandard, allow)

	require.Len(t, res.Records, 3)
	assert.Equal(t, []int64{1, 4, 5}, []int64{res.Records[0].ExternalID, res.Records[1].ExternalID, res.Records[2].ExternalID}, "order preserved")
	assert.Equal(t, map[string]int{"CORE": 2, "EVENT": 1}, res.SetCounts)
}

func TestApply_PassThrough(t *testing.T) {
	allow := NewAllowlist("v1", []string{"CORE"})
	records := []models.SourceCard{card(1, ptr("CORE")), card(2, ptr("OLD")), card(3, nil)}

	for _, format := range []string{FormatWild, FormatAll, "classic", ""} {
		t.Run("format_"+format, func(t *testing.T) {
			res := Apply(records, format, allow)
			assert.Equal(t, records, res.Records)
			assert.Equal(t, map[string]int{"CORE": 1, "OLD": 1, UnsetKey: 1}, res.SetCounts)
		})
	}
}

func TestApply_StandardWithoutAllowlist(t *testing.T) {
	res := Apply([]models.SourceCard{card(1, ptr("CORE"))}, FormatStandard, nil)
	assert.Empty(t, res.Records)
}

func TestParseAllowlist(t *testing.T) {
	a, err := ParseAllowlist([]byte("version: \"2026.2\"\nsets:\n  - CORE\n  - \" EVENT \"\n  - \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "2026.2", a.Version)
	assert.Equal(t, []string{"CORE", "EVENT"}, a.Sets())
	assert.True(t, a.Contains("EVENT"))
	assert.False(t, a.Contains("OLD"))

	_, err = ParseAllowlist([]byte("sets: [CORE]"))
	assert.ErrorContains(t, err, "version is required")

	_, err = ParseAllowlist([]byte("version: x\nsets: []"))
	assert.ErrorContains(t, err, "no sets")

	_, err = ParseAllowlist([]byte("version: [unclosed"))
	assert.Error(t, err)
}

func TestProvider(t *testing.T) {
	p := NewProvider(NewAllowlist("v1", []string{"CORE"}))
	snapshot := p.Current()

	p.Set(NewAllowlist("v2", []string{"TITANS"}))

	assert.Equal(t, "v1", snapshot.Version, "earlier snapshots are unaffected")
	assert.Equal(t, "v2", p.Current().Version)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceCard(t *testing.T) {
	raw := json.RawMessage(`{"dbfId":1746,"id":"CS2_029","name":"Fireball","set":"CORE","rarity":"FREE","type":"SPELL","cardClass":"MAGE","cost":4}`)

	card, err := ParseSourceCard(raw, "enUS")
	require.NoError(t, err)

	assert.True(t, card.HasExternalID)
	assert.Equal(t, int64(1746), card.ExternalID)
	assert.Equal(t, "CS2_029", card.DisplayKey)
	assert.Equal(t, "Fireball", card.Name)
	require.NotNil(t, card.SetID)
	assert.Equal(t, "CORE", *card.SetID)
	assert.Equal(t, "MAGE", *card.ClassTag)
	assert.JSONEq(t, string(raw), string(card.Raw))
}

func TestParseSourceCard_LocaleKeyedName(t *testing.T) {
	raw := json.RawMessage(`{"dbfId":1,"id":"A","name":{"enUS":"Fireball","frFR":"Boule de feu"}}`)

	fr, err := ParseSourceCard(raw, "frFR")
	require.NoError(t, err)
	assert.Equal(t, "Boule de feu", fr.Name)

	de, err := ParseSourceCard(raw, "deDE")
	require.NoError(t, err)
	assert.Equal(t, "Fireball", de.Name, "falls back to enUS")
}

func TestParseSourceCard_MissingFields(t *testing.T) {
	card, err := ParseSourceCard(json.RawMessage(`{"name":"Y"}`), "enUS")
	require.NoError(t, err)
	assert.False(t, card.HasExternalID)
	assert.Empty(t, card.DisplayKey)
	assert.Nil(t, card.SetID)
	assert.Nil(t, card.Rarity)

	card, err = ParseSourceCard(json.RawMessage(`{"dbfId":"not-a-number","id":"B"}`), "enUS")
	require.NoError(t, err)
	assert.False(t, card.HasExternalID)
}

func TestParseSourceCard_NotObject(t *testing.T) {
	_, err := ParseSourceCard(json.RawMessage(`[1,2]`), "enUS")
	assert.Error(t, err)

	_, err = ParseSourceCard(json.RawMessage(`null`), "enUS")
	assert.Error(t, err)
}

func TestCardRecord_Key(t *testing.T) {
	r := &CardRecord{ExternalID: 5, Locale: "enUS"}
	assert.Equal(t, Key{ExternalID: 5, Locale: "enUS"}, r.Key())
	assert.Equal(t, "card_records", CardRecord{}.TableName())
}

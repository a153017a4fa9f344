package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"mulligan/core/utils"
)

// FallbackLocale is used when a locale-keyed name lacks the run locale.
const FallbackLocale = "enUS"

// SourceCard is one element of the upstream snapshot, decoded leniently.
type SourceCard struct {
	// ExternalID is the upstream numeric identifier; HasExternalID is false when missing or non-numeric.
	ExternalID    int64
	HasExternalID bool
	DisplayKey    string
	Name          string
	SetID         *string
	Rarity        *string
	Type          *string
	ClassTag      *string
	// Raw is the element exactly as received.
	Raw json.RawMessage
}

// ParseSourceCard decodes one upstream element. Missing fields are left empty; it only
// fails when the element is not a JSON object.
func ParseSourceCard(raw json.RawMessage, locale string) (SourceCard, error) {
	var fields map[string]any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return SourceCard{}, fmt.Errorf("card element is not an object: %w", err)
	}
	if fields == nil {
		return SourceCard{}, fmt.Errorf("card element is null")
	}

	card := SourceCard{
		DisplayKey: strings.TrimSpace(utils.ToString(fields["id"])),
		Name:       resolveName(fields["name"], locale),
		SetID:      utils.OptionalString(fields["set"]),
		Rarity:     utils.OptionalString(fields["rarity"]),
		Type:       utils.OptionalString(fields["type"]),
		ClassTag:   utils.OptionalString(fields["cardClass"]),
		Raw:        append(json.RawMessage(nil), raw...),
	}
	card.ExternalID, card.HasExternalID = utils.ToInt64(fields["dbfId"])
	return card, nil
}

// resolveName handles both plain names and names keyed by locale.
func resolveName(v any, locale string) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case map[string]any:
		if s, ok := n[locale].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
		if s, ok := n[FallbackLocale].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

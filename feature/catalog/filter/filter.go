package filter

import (
	"mulligan/feature/catalog/models"
)

// Supported formats. Only FormatStandard filters; every other value passes records through.
const (
	FormatStandard = "standard"
	FormatWild     = "wild"
	FormatAll      = "all"
)

// UnsetKey is the per-set count bucket for records without a legality set.
const UnsetKey = "(none)"

// Result is the filtered snapshot plus per-set diagnostics.
type Result struct {
	Records []models.SourceCard
	// SetCounts counts the returned records per legality set id.
	SetCounts map[string]int
}

// Apply narrows records to the requested format, keeping their original order.
func Apply(records []models.SourceCard, format string, allow *Allowlist) Result {
	res := Result{SetCounts: make(map[string]int)}

	if format != FormatStandard {
		res.Records = records
		for _, r := range records {
			res.SetCounts[setKey(r)]++
		}
		return res
	}

	res.Records = make([]models.SourceCard, 0, len(records))
	for _, r := range records {
		if r.SetID == nil || allow == nil || !allow.Contains(*r.SetID) {
			continue
		}
		res.Records = append(res.Records, r)
		res.SetCounts[*r.SetID]++
	}
	return res
}

func setKey(r models.SourceCard) string {
	if r.SetID == nil {
		return UnsetKey
	}
	return *r.SetID
}

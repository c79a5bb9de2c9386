package scorecard

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// sectorAliases maps lower-cased spellings to canonical sector labels.
var sectorAliases = map[string]string{
	"textile":     Textiles,
	"textiles":    Textiles,
	"textil":      Textiles,
	"fabric":      Textiles,
	"garment":     Textiles,
	"apparel":     Textiles,
	"fertilizer":  Fertilizers,
	"fertilizers": Fertilizers,
	"fertiliser":  Fertilizers,
	"fertilisers": Fertilizers,
	"fert":        Fertilizers,
	"packaging":   Packaging,
	"package":     Packaging,
	"packing":     Packaging,
	"pack":        Packaging,
}

var dimensionPrefixes = []struct {
	prefix string
	dim    Dimension
}{
	{"econ", Economic},
	{"circ", Circular},
	{"env", Environmental},
	{"soc", Social},
}

var (
	sectorLabel = regexp.MustCompile(`(?i)^\s*sector\s*[:\-–|]\s*`)
	digitRun    = regexp.MustCompile(`\d+`)
)

// Normalize projects a raw row onto the strict schema. fallbackSector is used
// when the row carries no sector; an empty fallback means DefaultSector.
func Normalize(raw RawRow, fallbackSector string) NormalizedRow {
	return NormalizedRow{
		ID:               strings.TrimSpace(raw.ID),
		GoalNumber:       NormalizeGoal(raw.GoalNumber),
		Sector:           NormalizeSector(textOf(raw.Sector), fallbackSector),
		Dimension:        NormalizeDimension(textOf(raw.Dimension)),
		Score:            NormalizeScore(raw.Score),
		GoalDescription:  raw.GoalDescription,
		Target:           raw.Target,
		KPI:              raw.KPI,
		Question:         raw.Question,
		ScoreDescription: raw.ScoreDescription,
		Source:           raw.Source,
		Notes:            raw.Notes,
		Status:           raw.Status,
		Comment:          raw.Comment,
	}
}

// NormalizeAll normalizes every row with the same fallback sector.
func NormalizeAll(raws []RawRow, fallbackSector string) []NormalizedRow {
	out := make([]NormalizedRow, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r, fallbackSector))
	}
	return out
}

// NormalizeSector canonicalizes a sector label. Unknown non-empty labels are
// returned trimmed with their original case.
func NormalizeSector(raw, fallback string) string {
	s := stripSectorLabels(raw)
	if s == "" {
		if fallback = strings.TrimSpace(fallback); fallback == "" {
			return DefaultSector
		}
		return NormalizeSector(fallback, "")
	}
	if canon, ok := sectorAliases[strings.ToLower(s)]; ok {
		return canon
	}
	return s
}

// stripSectorLabels removes every leading "Sector:" label, so nested labels
// such as "Sector: Sector: Mining" reach their fixed point in one call.
func stripSectorLabels(s string) string {
	for {
		next := sectorLabel.ReplaceAllString(s, "")
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

// NormalizeDimension matches by prefix and returns "" for unknown labels.
func NormalizeDimension(raw string) Dimension {
	low := strings.ToLower(strings.TrimSpace(raw))
	if low == "" {
		return ""
	}
	for _, p := range dimensionPrefixes {
		if strings.HasPrefix(low, p.prefix) {
			return p.dim
		}
	}
	for _, d := range Dimensions {
		if strings.EqualFold(low, string(d)) {
			return d
		}
	}
	return ""
}

// NormalizeGoal accepts numbers, numeric strings and labels like "SDG 3",
// clamped to [MinGoal, MaxGoal].
func NormalizeGoal(v any) *int {
	f, ok := number(v)
	if !ok {
		s, isText := v.(string)
		if !isText {
			return nil
		}
		m := digitRun.FindString(s)
		if m == "" {
			return nil
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			// a digit run too long for int is far above MaxGoal
			return intPtr(MaxGoal)
		}
		f = float64(n)
	}
	f = math.Max(MinGoal, math.Min(MaxGoal, math.Trunc(f)))
	return intPtr(int(f))
}

// NormalizeScore coerces v to an integer in [MinScore, MaxScore]. Fractions
// round half up.
func NormalizeScore(v any) *int {
	f, ok := number(v)
	if !ok {
		return nil
	}
	f = math.Max(MinScore, math.Min(MaxScore, f))
	return intPtr(int(math.Floor(f + 0.5)))
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

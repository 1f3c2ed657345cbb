package scan

import (
	"strconv"
	"strings"
)

// Format identifies which vendor barcode encoding a raw string matched.
type Format string

const (
	FormatRelianceSmart    Format = "reliance_smart"
	FormatSmartAlternative Format = "smart_alternative"
	FormatRelianceFresh    Format = "reliance_fresh"
	FormatStarBazar        Format = "star_bazar"
	FormatFoodSquare       Format = "food_square"
	FormatRapsap           Format = "rapsap"
	FormatMrdpl            Format = "mrdpl"
	FormatUnknown          Format = "unknown"
	FormatManualLookup     Format = "manual_lookup"
)

// Label renders the format for display: "star_bazar" -> "Star Bazar".
func (f Format) Label() string {
	if f == FormatManualLookup {
		return "Manual Lookup"
	}
	words := strings.Split(string(f), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// byteRange is a half-open [start, end) slice of the raw barcode.
type byteRange struct {
	start, end int
}

func (r byteRange) slice(s string) (string, bool) {
	if r.start < 0 || r.end > len(s) || r.start >= r.end {
		return "", false
	}
	return s[r.start:r.end], true
}

// formatSpec describes one vendor encoding: prefix, length constraint, and the
// positions of the article code and weight fields. Weight fields are grams.
type formatSpec struct {
	tag      Format
	prefix   string
	minLen   int
	exactLen int // 0 means no exact-length constraint
	code     byteRange
	weight   byteRange
}

// formatSpecs is tried in this exact order. Some prefixes are prefixes of
// each other (]C10 vs ]C12, 21 vs 21, W vs W), so the more specific or longer
// layout must run first and the shorter one only catches what falls through.
var formatSpecs = []formatSpec{
	{tag: FormatSmartAlternative, prefix: "]C10", minLen: 24, code: byteRange{10, 19}, weight: byteRange{19, 24}},
	{tag: FormatRelianceSmart, prefix: "]C12", minLen: 21, code: byteRange{7, 16}, weight: byteRange{16, 21}},
	{tag: FormatRelianceFresh, prefix: "21", minLen: 21, code: byteRange{7, 16}, weight: byteRange{16, 21}},
	{tag: FormatStarBazar, prefix: "21", minLen: 17, code: byteRange{2, 6}, weight: byteRange{12, 17}},
	{tag: FormatFoodSquare, prefix: "W", minLen: 13, code: byteRange{1, 8}, weight: byteRange{8, 13}},
	{tag: FormatRapsap, prefix: "W", minLen: 12, exactLen: 12, code: byteRange{2, 7}, weight: byteRange{7, 12}},
	{tag: FormatMrdpl, prefix: "H", minLen: 12, code: byteRange{1, 6}, weight: byteRange{6, 12}},
}

// Decoded is the outcome of matching a raw barcode against the format table.
// WeightKg is nil when the format carries no weight field (bare-number codes).
type Decoded struct {
	ArticleCode int64
	WeightKg    *float64
	Format      Format
}

// Decode identifies the vendor encoding of raw and extracts the article code
// and weight. A shape mismatch on one format is never an error: the next
// format is tried. Barcodes that match no format but are plain integers are
// accepted with FormatUnknown and no weight. Returns ok=false only when the
// input is empty or matches nothing at all.
func Decode(raw string) (Decoded, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Decoded{Format: FormatUnknown}, false
	}

	for _, spec := range formatSpecs {
		if d, ok := spec.decode(raw); ok {
			return d, true
		}
	}

	code, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Decoded{Format: FormatUnknown}, false
	}
	return Decoded{ArticleCode: code, Format: FormatUnknown}, true
}

func (s formatSpec) decode(raw string) (Decoded, bool) {
	if !strings.HasPrefix(raw, s.prefix) || len(raw) < s.minLen {
		return Decoded{}, false
	}
	if s.exactLen > 0 && len(raw) != s.exactLen {
		return Decoded{}, false
	}

	codeField, ok := s.code.slice(raw)
	if !ok {
		return Decoded{}, false
	}
	code, err := strconv.ParseInt(codeField, 10, 64)
	if err != nil {
		return Decoded{}, false
	}

	weightField, ok := s.weight.slice(raw)
	if !ok {
		return Decoded{}, false
	}
	grams, err := strconv.ParseInt(weightField, 10, 64)
	if err != nil {
		return Decoded{}, false
	}

	kg := float64(grams) / 1000.0
	return Decoded{ArticleCode: code, WeightKg: &kg, Format: s.tag}, true
}

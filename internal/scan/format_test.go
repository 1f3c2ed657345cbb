package scan

import (
	"fmt"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestDecodeKnownFormats(t *testing.T) {
	cases := []struct {
		name    string
		barcode string
		code    int64
		weight  float64
		format  Format
	}{
		{"smart_alternative", "]C10123456" + "600022536" + "02501", 600022536, 2.501, FormatSmartAlternative},
		{"reliance_smart", "]C12123" + "600022496" + "01001", 600022496, 1.001, FormatRelianceSmart},
		{"reliance_fresh", "2100000" + "600647840" + "02021", 600647840, 2.021, FormatRelianceFresh},
		{"star_bazar", "21" + "4520" + "080000" + "00101", 4520, 0.101, FormatStarBazar},
		{"food_square", "W902979200110", 9029792, 0.110, FormatFoodSquare},
		{"rapsap", "W01930101000", 19301, 1.0, FormatRapsap},
		{"mrdpl", "H10003000260", 10003, 0.260, FormatMrdpl},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := Decode(tc.barcode)
			if !ok {
				t.Fatalf("Decode(%q) failed", tc.barcode)
			}
			if d.Format != tc.format {
				t.Fatalf("Decode(%q) format = %s, want %s", tc.barcode, d.Format, tc.format)
			}
			if d.ArticleCode != tc.code {
				t.Fatalf("Decode(%q) article code = %d, want %d", tc.barcode, d.ArticleCode, tc.code)
			}
			if d.WeightKg == nil || *d.WeightKg != tc.weight {
				t.Fatalf("Decode(%q) weight = %v, want %v", tc.barcode, d.WeightKg, tc.weight)
			}
		})
	}
}

func TestDecodeAmbiguousPrefixes(t *testing.T) {
	// ]C10 codes must never land on the ]C12 layout.
	d, ok := Decode("]C10123456" + "600022536" + "02501")
	if !ok || d.Format == FormatRelianceSmart {
		t.Fatalf("]C10 barcode classified as %s", d.Format)
	}

	// A 12-character W code is rapsap, never a truncated food_square.
	d, ok = Decode("W01930101000")
	if !ok || d.Format != FormatRapsap {
		t.Fatalf("12-char W barcode classified as %s", d.Format)
	}

	// A 13+ character W code must not be split on the rapsap layout.
	d, ok = Decode("W902979200110")
	if !ok || d.Format != FormatFoodSquare {
		t.Fatalf("13-char W barcode classified as %s", d.Format)
	}

	// A short "21" code that cannot satisfy the reliance_fresh layout falls
	// through to star_bazar.
	d, ok = Decode("21452008000000101")
	if !ok || d.Format != FormatStarBazar {
		t.Fatalf("17-char 21 barcode classified as %s", d.Format)
	}
}

func TestDecodeFallbackAndRejects(t *testing.T) {
	d, ok := Decode("8801234567890")
	if !ok || d.Format != FormatUnknown || d.ArticleCode != 8801234567890 || d.WeightKg != nil {
		t.Fatalf("bare integer fallback: got %+v ok=%v", d, ok)
	}

	for _, raw := range []string{"", "   ", "not-a-barcode", "]C1"} {
		if _, ok := Decode(raw); ok {
			t.Fatalf("Decode(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestWeightCodeRoundTrip(t *testing.T) {
	if got := WeightCode(nil); got != "00000" {
		t.Fatalf("WeightCode(nil) = %q", got)
	}
	for grams := 0; grams <= 99999; grams++ {
		kg := float64(grams) / 1000.0
		want := fmt.Sprintf("%05d", grams)
		if got := WeightCode(&kg); got != want {
			t.Fatalf("WeightCode(%d g) = %q, want %q", grams, got, want)
		}
	}
}

func TestFormatLabel(t *testing.T) {
	cases := map[Format]string{
		FormatStarBazar:        "Star Bazar",
		FormatSmartAlternative: "Smart Alternative",
		FormatManualLookup:     "Manual Lookup",
		FormatUnknown:          "Unknown",
	}
	for format, want := range cases {
		if got := format.Label(); got != want {
			t.Fatalf("Label(%s) = %q, want %q", format, got, want)
		}
	}
}

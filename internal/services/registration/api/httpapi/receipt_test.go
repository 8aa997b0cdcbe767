package httpapi

import (
	"strings"
	"testing"
)

func TestFormatMinorUnitsUsesCurrencyScale(t *testing.T) {
	t.Parallel()

	inr := formatMinorUnits(30000, "INR")
	if inr == "" {
		t.Fatal("expected INR amount to render")
	}
	if !strings.Contains(inr, "300") || !strings.Contains(inr, ".") {
		t.Fatalf("INR display = %q, want 300 with two decimals", inr)
	}

	// JPY has no minor unit: 30000 is thirty thousand yen, not three hundred.
	jpy := formatMinorUnits(30000, "JPY")
	if jpy == "" {
		t.Fatal("expected JPY amount to render")
	}
	if strings.Contains(jpy, ".") {
		t.Fatalf("JPY display = %q, want no decimal fraction", jpy)
	}
}

func TestFormatMinorUnitsUnknownCode(t *testing.T) {
	t.Parallel()

	if got := formatMinorUnits(30000, "???"); got != "" {
		t.Fatalf("unknown currency display = %q, want empty", got)
	}
	if got := formatMinorUnits(30000, ""); got != "" {
		t.Fatalf("empty currency display = %q, want empty", got)
	}
}

package investiq

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12_50_00_00_000, "₹1250.00 Cr"},
		{10_000_000, "₹1.00 Cr"},
		{2_500_000, "₹25.00 L"},
		{100_000, "₹1.00 L"},
		{99_999, "₹99999.00"},
		{3850.5, "₹3850.50"},
		{-20_000_000, "₹-2.00 Cr"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(46); got != "46.00%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(-2.345); got != "-2.35%" {
		t.Errorf("got %q", got)
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(28.456); got != "28.46" {
		t.Errorf("got %q", got)
	}
}

func TestFormatVolume(t *testing.T) {
	if got := FormatVolume(25_000_000); got != "2.50 Cr" {
		t.Errorf("got %q", got)
	}
	if got := FormatVolume(250_000); got != "2.50 L" {
		t.Errorf("got %q", got)
	}
	if got := FormatVolume(999); got != "999" {
		t.Errorf("got %q", got)
	}
}

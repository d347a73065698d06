package tools

import "testing"

func TestAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{25, "25"},
		{19.5, "19.5"},
		{19.99, "19.99"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := amount(tt.in); got != tt.want {
			t.Errorf("amount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"not_fulfilled", "Not Fulfilled"},
		{"captured", "Captured"},
		{"PARTIALLY_SHIPPED", "Partially Shipped"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 10); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
	if got := preview("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("preview truncation = %q", got)
	}
}

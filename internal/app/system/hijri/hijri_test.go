package hijri

import (
	"testing"
	"time"
)

func TestFromGregorian(t *testing.T) {
	tests := []struct {
		y    int
		m    time.Month
		d    int
		want Date
	}{
		{2023, time.July, 19, Date{1445, 1, 1}},
		{2024, time.March, 11, Date{1445, 9, 1}},
		{2025, time.June, 26, Date{1446, 12, 29}},
		{2026, time.March, 15, Date{1447, 9, 26}},
		{2000, time.January, 1, Date{1420, 9, 24}},
	}
	for _, tt := range tests {
		got := FromGregorian(tt.y, tt.m, tt.d)
		if got != tt.want {
			t.Errorf("FromGregorian(%d, %s, %d) = %+v, want %+v", tt.y, tt.m, tt.d, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-11", "1 Ramadan 1445"},
		{" 2023-07-19 ", "1 Muharram 1445"},
		{"2025-06-26", "29 Dhu al-Hijjah 1446"},
		{"", ""},
		{"   ", ""},
		{"not a date", ""},
		{"2026-02-30", ""},
		{"0500-01-01", ""},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthName_OutOfRange(t *testing.T) {
	if got := (Date{Month: 13}).MonthName(); got != "Month 13" {
		t.Errorf("MonthName() = %q, want %q", got, "Month 13")
	}
}

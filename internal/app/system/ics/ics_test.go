package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, ev Event) string {
	t.Helper()
	out, err := Generate(ev)
	require.NoError(t, err)
	return out
}

func TestGenerate_Structure(t *testing.T) {
	out := generate(t, Event{Title: "Wedding", Date: "2026-03-15"})
	lines := strings.Split(out, "\r\n")

	require.GreaterOrEqual(t, len(lines), 9)
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "VERSION:2.0", lines[1])
	assert.Equal(t, "PRODID:-//Gatherly//EN", lines[2])
	assert.Equal(t, "BEGIN:VEVENT", lines[3])
	assert.Equal(t, "END:VEVENT", lines[len(lines)-2])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(out, "END:VEVENT"))
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestGenerate_Times(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
	}{
		{"defaults", "", "", "DTSTART:20260315T180000", "DTEND:20260315T230000"},
		{"custom", "09:00", "12:00", "DTSTART:20260315T090000", "DTEND:20260315T120000"},
		{"same start and end", "14:00", "14:00", "DTSTART:20260315T140000", "DTEND:20260315T150000"},
		{"same after clamping", "14:00", "14:0", "DTSTART:20260315T140000", "DTEND:20260315T150000"},
		{"single digit hour", "9:30", "11:15", "DTSTART:20260315T093000", "DTEND:20260315T111500"},
		{"clamped", "25:99", "23:00", "DTSTART:20260315T235900", "DTEND:20260315T230000"},
		{"negative clamps to zero", "-3:-5", "01:00", "DTSTART:20260315T000000", "DTEND:20260315T010000"},
		{"garbage reads as midnight", "noon", "02:00", "DTSTART:20260315T000000", "DTEND:20260315T020000"},
		{"wraps past midnight", "23:30", "23:30", "DTSTART:20260315T233000", "DTEND:20260316T003000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, Event{Title: "Event", Date: "2026-03-15", StartTime: tt.start, EndTime: tt.end})
			assert.Contains(t, out, tt.wantStart+"\r\n")
			assert.Contains(t, out, tt.wantEnd+"\r\n")
		})
	}
}

func TestGenerate_EscapesSummary(t *testing.T) {
	out := generate(t, Event{Title: "Party; at John's, Inc.", Date: "2026-03-15"})
	assert.Contains(t, out, `SUMMARY:Party\; at John's\, Inc.`)
}

func TestGenerate_Location(t *testing.T) {
	out := generate(t, Event{Title: "Event", Date: "2026-03-15", Location: "Grand Hall", Address: "123 Main St"})
	assert.Contains(t, out, `LOCATION:Grand Hall\, 123 Main St`)

	out = generate(t, Event{Title: "Event", Date: "2026-03-15", Address: "123 Main St"})
	assert.Contains(t, out, "LOCATION:123 Main St\r\n")

	out = generate(t, Event{Title: "Event", Date: "2026-03-15"})
	assert.NotContains(t, out, "LOCATION:")
}

func TestGenerate_Description(t *testing.T) {
	out := generate(t, Event{Title: "Event", Date: "2026-03-15", Description: "Wedding Ceremony"})
	assert.Contains(t, out, "DESCRIPTION:Wedding Ceremony\r\n")

	out = generate(t, Event{Title: "Event", Date: "2026-03-15"})
	assert.NotContains(t, out, "DESCRIPTION:")
}

func TestGenerate_EmptyTitle(t *testing.T) {
	out := generate(t, Event{Title: "", Date: "2026-03-15"})
	assert.Contains(t, out, "SUMMARY:Event\r\n")
}

func TestGenerate_InvalidDate(t *testing.T) {
	for _, d := range []string{"", "15/03/2026", "2026-13-01", "March 15"} {
		_, err := Generate(Event{Title: "Event", Date: d})
		assert.ErrorIs(t, err, ErrInvalidDate, "date %q", d)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`a\b`, `a\\b`},
		{"a;b,c", `a\;b\,c`},
		{`\;`, `\\;`},
		{"line1\nline2", `line1\nline2`},
		{"line1\r\nline2", `line1\nline2`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), "Escape(%q)", tt.in)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "event.ics"},
		{"   ", "event.ics"},
		{"wedding", "wedding.ics"},
		{"wedding.ics", "wedding.ics"},
		{"Wedding.ICS", "Wedding.ICS"},
		{"../../etc/passwd", "passwd.ics"},
		{`C:\temp\party`, "party.ics"},
		{`say "hi"`, "say hi.ics"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.in), "Filename(%q)", tt.in)
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="event.ics"`, ContentDisposition(""))
}

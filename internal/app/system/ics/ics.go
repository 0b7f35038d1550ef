// Package ics renders a single event as an iCalendar (RFC 5545) document so
// guests can add an invitation to their phone or desktop calendar.
package ics

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when an event omits its times.
const (
	DefaultStartTime = "18:00"
	DefaultEndTime   = "23:00"
	DefaultTitle     = "Event"
	DefaultFilename  = "event.ics"
)

// ContentType is the MIME type of Generate's output.
const ContentType = "text/calendar; charset=utf-8"

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "20060102T150405"
	lineBreak      = "\r\n"
)

// ErrInvalidDate is returned when the event date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("event date must be YYYY-MM-DD")

// Event is the input to Generate. Times are HH:mm (24h) in the event's local
// time; the output uses floating local times without a zone.
type Event struct {
	Title       string
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Address     string
	Description string
}

// Generate returns the calendar document for ev with CRLF line endings.
//
// Missing times default to 18:00 and 23:00. Out-of-range hours and minutes
// are clamped. When start and end resolve to the same minute the end moves
// one hour later, rolling into the next day past midnight.
func Generate(ev Event) (string, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(ev.Date))
	if err != nil {
		return "", ErrInvalidDate
	}

	startH, startM := parseClock(orDefault(ev.StartTime, DefaultStartTime))
	endH, endM := parseClock(orDefault(ev.EndTime, DefaultEndTime))

	start := day.Add(time.Duration(startH)*time.Hour + time.Duration(startM)*time.Minute)
	end := day.Add(time.Duration(endH)*time.Hour + time.Duration(endM)*time.Minute)
	if end.Equal(start) {
		end = start.Add(time.Hour)
	}

	title := ev.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Gatherly//EN",
		"BEGIN:VEVENT",
		"DTSTART:" + start.Format(dateTimeLayout),
		"DTEND:" + end.Format(dateTimeLayout),
		"SUMMARY:" + Escape(title),
	}
	if loc := joinNonEmpty(ev.Location, ev.Address); loc != "" {
		lines = append(lines, "LOCATION:"+Escape(loc))
	}
	if ev.Description != "" {
		lines = append(lines, "DESCRIPTION:"+Escape(ev.Description))
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	return strings.Join(lines, lineBreak), nil
}

// Escape escapes TEXT property values. Backslash goes first so the escapes
// added for ';' and ',' are not doubled.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// Filename returns a safe download filename ending in .ics, or
// DefaultFilename when name is blank.
func Filename(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, `\`, "/")))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		return DefaultFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".ics") {
		name += ".ics"
	}
	return name
}

// ContentDisposition returns the attachment header value for filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", Filename(filename))
}

// parseClock reads "H:mm" or "HH:mm". Each component uses its leading
// digits; missing or non-numeric components read as zero. Results are
// clamped to 0-23 and 0-59.
func parseClock(s string) (int, int) {
	hs, ms, _ := strings.Cut(strings.TrimSpace(s), ":")
	return clamp(leadingInt(hs), 0, 23), clamp(leadingInt(ms), 0, 59)
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
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

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

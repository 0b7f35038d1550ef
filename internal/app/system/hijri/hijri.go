// Package hijri converts Gregorian dates to the Islamic (Hijri) calendar for
// invitations that show both dates.
//
// The conversion uses the arithmetic (tabular) calendar with the civil epoch.
// It can differ by a day from sighting-based or Umm al-Qura calendars.
package hijri

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabiʻ I",
	"Rabiʻ II",
	"Jumada I",
	"Jumada II",
	"Rajab",
	"Shaʻban",
	"Ramadan",
	"Shawwal",
	"Dhu al-Qiʻdah",
	"Dhu al-Hijjah",
}

// Date is a Hijri calendar date.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int
}

// MonthName returns the English transliteration of the month.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return "Month " + strconv.Itoa(d.Month)
	}
	return monthNames[d.Month-1]
}

// String renders "D Month YYYY", e.g. "1 Ramadan 1445".
func (d Date) String() string {
	return strconv.Itoa(d.Day) + " " + d.MonthName() + " " + strconv.Itoa(d.Year)
}

// FromGregorian converts a Gregorian calendar date. The result is only
// meaningful for dates after the Hijri epoch (July 622).
func FromGregorian(year int, month time.Month, day int) Date {
	l := julianDay(year, int(month), day) - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	m := (24 * l) / 709
	return Date{
		Year:  30*n + j - 30,
		Month: m,
		Day:   l - (709*m)/24,
	}
}

// Format converts a YYYY-MM-DD string and renders it. Blank, unparseable,
// or pre-epoch input returns "".
func Format(date string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil || t.Year() < 623 {
		return ""
	}
	return FromGregorian(t.Year(), t.Month(), t.Day()).String()
}

// julianDay returns the Julian Day Number of a proleptic Gregorian date.
func julianDay(y, m, d int) int {
	a := (14 - m) / 12
	y2 := y + 4800 - a
	m2 := m + 12*a - 3
	return d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

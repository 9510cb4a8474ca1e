package calendar

import (
	"sort"
	"time"
)

// fixedHolidays are observed on their date regardless of weekday
var fixedHolidays = []MonthDay{
	{Month: time.January, Day: 1},
	{Month: time.May, Day: 1},
	{Month: time.July, Day: 20},
	{Month: time.August, Day: 7},
	{Month: time.December, Day: 8},
	{Month: time.December, Day: 25},
}

// movableHolidays move to the following Monday when they do not fall on one
// (Ley 51 de 1983).
var movableHolidays = []MonthDay{
	{Month: time.January, Day: 6},
	{Month: time.March, Day: 19},
	{Month: time.June, Day: 29},
	{Month: time.August, Day: 15},
	{Month: time.October, Day: 12},
	{Month: time.November, Day: 1},
	{Month: time.November, Day: 11},
}

// easterOffsets are the Easter-relative holidays. Ascension, Corpus Christi and
// Sacred Heart already land on Mondays at these offsets.
var easterOffsets = []int{-3, -2, 43, 64, 71}

// Easter returns Easter Sunday of year (anonymous Gregorian algorithm)
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

// NationalHolidays returns the Colombian national holidays of year, sorted
func NationalHolidays(year int) []time.Time {
	days := make([]time.Time, 0, 18)
	for _, md := range fixedHolidays {
		days = append(days, md.In(year))
	}
	for _, md := range movableHolidays {
		days = append(days, nextMonday(md.In(year)))
	}
	easter := Easter(year)
	for _, offset := range easterOffsets {
		days = append(days, easter.AddDate(0, 0, offset))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// HolyWeek returns Monday through Friday of the week before Easter
func HolyWeek(year int) []time.Time {
	easter := Easter(year)
	days := make([]time.Time, 0, 5)
	for offset := -6; offset <= -2; offset++ {
		days = append(days, easter.AddDate(0, 0, offset))
	}
	return days
}

func nextMonday(t time.Time) time.Time {
	shift := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, shift)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// civil truncates t to its calendar date in UTC, keeping the date t shows in its own location
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}

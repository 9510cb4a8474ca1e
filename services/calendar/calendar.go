// Package calendar computes the non-working days of court offices and counts
// business days over them.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"calificaciones_app_go/models"
)

// ErrInvalidCourtConfiguration is returned when an office has a missing or
// unknown specialty or category
var ErrInvalidCourtConfiguration = errors.New("invalid court configuration")

// MonthDay is a day of the year without a year
type MonthDay struct {
	Month time.Month `yaml:"month" json:"month"`
	Day   int        `yaml:"day" json:"day"`
}

// In returns the date in year
func (md MonthDay) In(year int) time.Time {
	return date(year, md.Month, md.Day)
}

// Policy holds the judicial calendar values layered over national holidays
type Policy struct {
	JusticeDay  MonthDay `yaml:"justice_day" json:"justice_day"`
	RecessStart MonthDay `yaml:"recess_start" json:"recess_start"`
	RecessEnd   MonthDay `yaml:"recess_end" json:"recess_end"`
}

// DefaultPolicy returns the calendar used by Colombian courts: justice day on
// 17 December and the collective recess from 20 December to 10 January.
func DefaultPolicy() Policy {
	return Policy{
		JusticeDay:  MonthDay{Month: time.December, Day: 17},
		RecessStart: MonthDay{Month: time.December, Day: 20},
		RecessEnd:   MonthDay{Month: time.January, Day: 10},
	}
}

// Validate checks that every configured day exists
func (p Policy) Validate() error {
	for name, md := range map[string]MonthDay{
		"justice_day":  p.JusticeDay,
		"recess_start": p.RecessStart,
		"recess_end":   p.RecessEnd,
	} {
		if md.Month < time.January || md.Month > time.December || md.Day < 1 || md.Day > 31 {
			return fmt.Errorf("calendar policy: invalid %s %d-%d", name, md.Month, md.Day)
		}
		// 2024 is a leap year so 29 February is accepted
		if md.In(2024).Month() != md.Month {
			return fmt.Errorf("calendar policy: invalid %s %d-%d", name, md.Month, md.Day)
		}
	}
	return nil
}

// Variant is the set of judicial closures an office observes
type Variant int

const (
	// VariantBase observes national holidays and justice day only
	VariantBase Variant = iota
	// VariantHolyWeek also closes the whole Holy Week
	VariantHolyWeek
	// VariantFull also closes the collective year-end recess
	VariantFull
)

func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "base"
	case VariantHolyWeek:
		return "holy_week"
	case VariantFull:
		return "full"
	}
	return "unknown"
}

// VariantFor selects the closure variant for an office
func VariantFor(specialty models.Specialty, category models.OfficeCategory) (Variant, error) {
	if !specialty.Valid() {
		return 0, fmt.Errorf("%w: unknown specialty %q", ErrInvalidCourtConfiguration, specialty)
	}
	if !category.Valid() {
		return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidCourtConfiguration, category)
	}
	switch specialty {
	case models.SpecialtySentenceExecution, models.SpecialtyMixedFamily:
		return VariantBase, nil
	}
	if category == models.CategoryMunicipal {
		switch specialty {
		case models.SpecialtyAdolescentCriminal, models.SpecialtyCriminalGuarantees,
			models.SpecialtyCriminalTrial, models.SpecialtyMixedCriminal:
			return VariantHolyWeek, nil
		}
	}
	return VariantFull, nil
}

// Calendar is the non-working date set of one office variant. Years are
// materialized lazily and cached; a Calendar is safe for concurrent use.
type Calendar struct {
	policy  Policy
	variant Variant

	mu    sync.Mutex
	years map[int]map[time.Time]struct{}
}

// New builds the calendar for an office under policy
func New(policy Policy, specialty models.Specialty, category models.OfficeCategory) (*Calendar, error) {
	variant, err := VariantFor(specialty, category)
	if err != nil {
		return nil, err
	}
	return ForVariant(policy, variant), nil
}

// NonWorkingDates builds the calendar for an office under the default policy
func NonWorkingDates(specialty models.Specialty, category models.OfficeCategory) (*Calendar, error) {
	return New(DefaultPolicy(), specialty, category)
}

// ForVariant builds a calendar for an explicit variant
func ForVariant(policy Policy, variant Variant) *Calendar {
	return &Calendar{
		policy:  policy,
		variant: variant,
		years:   make(map[int]map[time.Time]struct{}),
	}
}

// Variant returns the closure variant of the calendar
func (c *Calendar) Variant() Variant {
	return c.variant
}

func (c *Calendar) year(y int) map[time.Time]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.years[y]; ok {
		return set
	}

	set := make(map[time.Time]struct{})
	for _, d := range NationalHolidays(y) {
		set[d] = struct{}{}
	}
	set[c.policy.JusticeDay.In(y)] = struct{}{}

	if c.variant >= VariantHolyWeek {
		for _, d := range HolyWeek(y) {
			set[d] = struct{}{}
		}
	}
	if c.variant >= VariantFull {
		for _, d := range c.recessDays(y) {
			set[d] = struct{}{}
		}
	}

	c.years[y] = set
	return set
}

// recessDays returns the recess days that fall inside year y. A window that
// wraps the new year contributes its head and its tail to every year.
func (c *Calendar) recessDays(y int) []time.Time {
	start := c.policy.RecessStart.In(y)
	end := c.policy.RecessEnd.In(y)

	var days []time.Time
	if !start.After(end) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
		return days
	}
	for d := date(y, time.January, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	for d := start; d.Year() == y; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsNonWorking reports whether t is in the non-working set. Weekends are not
// part of the set.
func (c *Calendar) IsNonWorking(t time.Time) bool {
	d := civil(t)
	_, ok := c.year(d.Year())[d]
	return ok
}

// IsBusinessDay reports whether t is a weekday outside the non-working set
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsNonWorking(t)
}

// NonWorkingDays returns the sorted non-working set of year
func (c *Calendar) NonWorkingDays(year int) []time.Time {
	set := c.year(year)
	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// CountBusinessDays counts the days of [from, to] (inclusive) that are neither
// weekend days nor in the calendar's non-working set. An inverted range counts 0.
func CountBusinessDays(c *Calendar, from, to time.Time) int {
	start, end := civil(from), civil(to)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

package scoring

import (
	"sort"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services/calendar"
)

// Aggregate is one consolidated sub-period together with the officials whose
// rows it sums.
type Aggregate struct {
	Record    models.ConsolidatedRecord
	officials map[string]struct{}
}

// Includes reports whether officialID reported rows in the sub-period
func (a Aggregate) Includes(officialID string) bool {
	_, ok := a.officials[officialID]
	return ok
}

// AggregateRecords groups records by sub-period start, sums every counter and
// annotates the business days of each sub-period. A non-empty class relabels
// the output rows. The result is ordered by sub-period start.
func AggregateRecords(cal *calendar.Calendar, records []models.MovementRecord, class models.CaseClass) []Aggregate {
	index := make(map[int64]int)
	var out []Aggregate

	for _, r := range records {
		key := r.From.UnixNano()
		i, ok := index[key]
		if !ok {
			rowClass := class
			if rowClass == "" {
				rowClass = r.Class
			}
			out = append(out, Aggregate{
				Record: models.ConsolidatedRecord{
					Period:       r.Period,
					OfficeID:     r.OfficeID,
					OfficialID:   r.OfficialID,
					Class:        rowClass,
					Category:     models.ConsolidatedCategory,
					From:         r.From,
					To:           r.To,
					BusinessDays: calendar.CountBusinessDays(cal, r.From, r.To),
				},
				officials: make(map[string]struct{}),
			})
			i = len(out) - 1
			index[key] = i
		}
		out[i].Record.Movement.Add(r.Movement)
		out[i].officials[r.OfficialID] = struct{}{}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Record.From.Before(out[j].Record.From) })
	return out
}

// attachedDays sums the business days of the sub-periods officialID reported in
func attachedDays(aggregates []Aggregate, officialID string) int {
	days := 0
	for _, a := range aggregates {
		if a.Includes(officialID) {
			days += a.Record.BusinessDays
		}
	}
	return days
}

func consolidatedRows(aggregates []Aggregate) []models.ConsolidatedRecord {
	out := make([]models.ConsolidatedRecord, 0, len(aggregates))
	for _, a := range aggregates {
		out = append(out, a.Record)
	}
	return out
}

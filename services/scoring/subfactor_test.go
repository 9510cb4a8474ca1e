package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services/calendar"
)

func TestSubfactorScore(t *testing.T) {
	tests := []struct {
		name         string
		output       int
		officialBase int
		quota        float64
		weight       float64
		expected     float64
	}{
		{"Zero quota", 50, 100, 0, 45, 0},
		{"Proportional", 45, 100, 90, 45, 22.5},
		{"Capped by official base", 200, 90, 90, 45, 45},
		{"Clamped to weight", 120, 150, 100, 40, 40},
		{"Negative base clamps to zero", 10, -5, 50, 45, 0},
		{"Negative quota clamps to zero", 10, 20, -50, 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubfactorScore(tt.output, tt.officialBase, tt.quota, tt.weight)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, tt.weight)
		})
	}
}

func TestProportionalQuota(t *testing.T) {
	assert.Zero(t, ProportionalQuota(100, Days{Office: 0, Worked: 50}))
	assert.InDelta(t, 50.0, ProportionalQuota(100, Days{Office: 200, Worked: 100}), 1e-9)
}

func TestOralOfficeBaseLateIntake(t *testing.T) {
	p := DefaultPolicy()
	q3 := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	q4 := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	rs := []models.MovementRecord{
		row(officialA, models.ClassOral, "Procesos ejecutivos", q3, q4.AddDate(0, 0, -1), models.Movement{InitialInventory: 50, EffectiveIntake: 20}),
		row(officialA, models.ClassOral, "Procesos ejecutivos", q4, end, models.Movement{EffectiveIntake: 15}),
		row(officialA, models.ClassOral, "Incidentes de Desacato", q4, end, models.Movement{EffectiveIntake: 6, FinalInventory: 4}),
		row(officialB, models.ClassOral, "Incidentes de Desacato", q4, end, models.Movement{EffectiveIntake: 2, FinalInventory: 7}),
	}

	// base 50 + 43 intake, minus late non-contempt intake 15, minus own contempt inventory 4
	assert.Equal(t, 93, baseWorkload(rs))
	assert.Equal(t, 15, p.lateIntake(rs))
	assert.Equal(t, 4, p.contemptFinalInventory(rs, officialA))
	assert.Equal(t, 74, p.oralOfficeBase(rs, officialA))

	p.LateIntakeFromMonth = time.November
	assert.Zero(t, p.lateIntake(rs))
}

func TestInitialInventoryUsesEarliestSubPeriod(t *testing.T) {
	rs := []models.MovementRecord{
		row(officialA, models.ClassOral, "A", h2From, h2To, models.Movement{InitialInventory: 90}),
		row(officialA, models.ClassOral, "A", h1From, h1To, models.Movement{InitialInventory: 100}),
		row(officialB, models.ClassOral, "B", h1From, h1To, models.Movement{InitialInventory: 7}),
	}
	assert.Equal(t, 107, initialInventory(rs))
	assert.Zero(t, initialInventory(nil))
}

func TestOfficialAndOthersOutput(t *testing.T) {
	rs := []models.MovementRecord{
		row(officialA, models.ClassOral, "A", h1From, h1To, models.Movement{EffectiveOutput: 10, Settlements: 3}),
		row(officialB, models.ClassOral, "A", h1From, h1To, models.Movement{EffectiveOutput: 8, Settlements: 4}),
	}
	assert.Equal(t, 13, officialOutput(rs, officialA))
	assert.Equal(t, 8, othersOutput(rs, officialA))
}

func TestAggregateRecords(t *testing.T) {
	cal := calendar.ForVariant(calendar.DefaultPolicy(), calendar.VariantFull)
	rs := []models.MovementRecord{
		row(officialA, models.ClassOral, "A", h2From, h2To, models.Movement{InitialInventory: 1, EffectiveIntake: 2, EffectiveWorkload: 3, EffectiveOutput: 4, Settlements: 5, FinalInventory: 6, Remaining: 7}),
		row(officialB, models.ClassOral, "B", h1From, h1To, models.Movement{InitialInventory: 10}),
		row(officialA, models.ClassOral, "B", h2From, h2To, models.Movement{InitialInventory: 1, EffectiveIntake: 1, EffectiveWorkload: 1, EffectiveOutput: 1, Settlements: 1, FinalInventory: 1, Remaining: 1}),
	}

	got := AggregateRecords(cal, rs, "")
	assert.Len(t, got, 2)

	assert.Equal(t, h1From, got[0].Record.From)
	assert.Equal(t, 113, got[0].Record.BusinessDays)
	assert.Equal(t, 10, got[0].Record.InitialInventory)
	assert.True(t, got[0].Includes(officialB))
	assert.False(t, got[0].Includes(officialA))

	assert.Equal(t, h2From, got[1].Record.From)
	assert.Equal(t, 117, got[1].Record.BusinessDays)
	assert.Equal(t, models.Movement{InitialInventory: 2, EffectiveIntake: 3, EffectiveWorkload: 4, EffectiveOutput: 5, Settlements: 6, FinalInventory: 7, Remaining: 8}, got[1].Record.Movement)
	assert.Equal(t, models.ConsolidatedCategory, got[1].Record.Category)
	assert.Equal(t, models.ClassOral, got[1].Record.Class)

	relabelled := AggregateRecords(cal, rs, models.ClassConstitutional)
	assert.Equal(t, models.ClassConstitutional, relabelled[0].Record.Class)

	assert.Equal(t, 117, attachedDays(got, officialA))
	assert.Equal(t, 113, attachedDays(got, officialB))
	assert.Empty(t, AggregateRecords(cal, nil, ""))
}

func TestPartition(t *testing.T) {
	p := DefaultPolicy()
	rs := []models.MovementRecord{
		row(officialA, models.ClassOral, "Procesos", h1From, h1To, models.Movement{}),
		row(officialA, models.ClassOral, "Incidentes de Desacato", h1From, h1To, models.Movement{}),
		row(officialA, models.ClassOral, "Procesos con sentencia y trámite posterior incidentes de Desacato", h1From, h1To, models.Movement{}),
		row(officialA, models.ClassOral, models.ConsolidatedCategory, h1From, h1To, models.Movement{}),
		row(officialA, models.ClassGuarantees, "Garantías", h1From, h1To, models.Movement{}),
		row(officialA, models.ClassWritten, "Escritos", h1From, h1To, models.Movement{EffectiveWorkload: 0}),
	}

	part := p.Partition(rs)
	assert.Len(t, part.Ordinary, 1)
	assert.Len(t, part.Tutela, 2)
	assert.Len(t, part.Guarantees, 1)
	assert.Len(t, part.Written, 1)
	assert.Equal(t, PlacementWithOral, part.Placement)
	assert.Len(t, part.OralSet(), 3)
	assert.Len(t, part.WrittenSet(), 1)

	rs[5].EffectiveWorkload = 3
	part = p.Partition(rs)
	assert.Equal(t, PlacementWithWritten, part.Placement)
	assert.Len(t, part.OralSet(), 1)
	assert.Len(t, part.WrittenSet(), 3)
}

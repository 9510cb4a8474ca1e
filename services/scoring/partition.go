package scoring

import "calificaciones_app_go/models"

// ConstitutionalPlacement tells which subfactor scores the tutela rows
type ConstitutionalPlacement int

const (
	// PlacementWithOral folds tutela rows into the oral subfactor. Used when
	// the office has no written workload.
	PlacementWithOral ConstitutionalPlacement = iota
	// PlacementWithWritten scores tutela rows with the written subfactor
	PlacementWithWritten
)

func (p ConstitutionalPlacement) String() string {
	if p == PlacementWithWritten {
		return "written"
	}
	return "oral"
}

// Partition splits the raw movement rows of an office by scoring set
type Partition struct {
	Ordinary   []models.MovementRecord // oral rows outside constitutional categories
	Tutela     []models.MovementRecord // oral rows in constitutional categories
	Guarantees []models.MovementRecord
	Written    []models.MovementRecord
	Placement  ConstitutionalPlacement
}

// Partition classifies records. Consolidated rows are ignored.
func (p Policy) Partition(records []models.MovementRecord) Partition {
	var part Partition
	hasWritten := false

	for _, r := range records {
		if r.Category == models.ConsolidatedCategory {
			continue
		}
		switch r.Class {
		case models.ClassOral:
			if p.isConstitutional(r.Category) {
				part.Tutela = append(part.Tutela, r)
			} else {
				part.Ordinary = append(part.Ordinary, r)
			}
		case models.ClassGuarantees:
			part.Guarantees = append(part.Guarantees, r)
		case models.ClassWritten:
			part.Written = append(part.Written, r)
			if r.EffectiveWorkload > 0 {
				hasWritten = true
			}
		}
	}

	if hasWritten {
		part.Placement = PlacementWithWritten
	}
	return part
}

// HasWrittenWorkload reports whether any written row carries workload
func (p Partition) HasWrittenWorkload() bool {
	return p.Placement == PlacementWithWritten
}

// OralSet returns the rows scored by the oral subfactor
func (p Partition) OralSet() []models.MovementRecord {
	if p.Placement == PlacementWithOral {
		return concat(p.Ordinary, p.Tutela)
	}
	return p.Ordinary
}

// WrittenSet returns the rows scored by the written subfactor
func (p Partition) WrittenSet() []models.MovementRecord {
	if p.Placement == PlacementWithWritten {
		return concat(p.Written, p.Tutela)
	}
	return p.Written
}

func concat(a, b []models.MovementRecord) []models.MovementRecord {
	out := make([]models.MovementRecord, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Package scoring derives office scores from case movement, hearing attendance
// and personnel events. It performs no I/O besides loading its policy file.
package scoring

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"calificaciones_app_go/services/calendar"
)

// Default policy values.
const (
	DefaultOralWeight          = 40.0
	DefaultStandardWeight      = 45.0
	DefaultHearingWeight       = 5.0
	DefaultLateIntakeFromMonth = time.October
)

// Policy holds every tunable value of the scoring formulas
type Policy struct {
	// OralWeight is the maximum oral subfactor score.
	OralWeight float64 `yaml:"oral_weight"`

	// StandardWeight is the maximum guarantees and written subfactor score.
	StandardWeight float64 `yaml:"standard_weight"`

	// HearingWeight is the maximum hearing bonus.
	HearingWeight float64 `yaml:"hearing_weight"`

	// LateIntakeFromMonth opens the late reporting window: intake of oral
	// sub-periods starting in this month or later leaves the oral office base.
	LateIntakeFromMonth time.Month `yaml:"late_intake_from_month"`

	// ConstitutionalCategories are the oral categories scored as tutela.
	ConstitutionalCategories []string `yaml:"constitutional_categories"`

	// ContemptCategories are excluded from late intake, and the official's
	// final inventory in them is subtracted from the oral office base.
	ContemptCategories []string `yaml:"contempt_categories"`

	Calendar calendar.Policy `yaml:"calendar"`
}

// DefaultPolicy returns the policy in force for Colombian courts
func DefaultPolicy() Policy {
	return Policy{
		OralWeight:          DefaultOralWeight,
		StandardWeight:      DefaultStandardWeight,
		HearingWeight:       DefaultHearingWeight,
		LateIntakeFromMonth: DefaultLateIntakeFromMonth,
		ConstitutionalCategories: []string{
			"Incidentes de Desacato",
			"Movimiento de Tutelas",
			"Procesos con sentencia y trámite posterior incidentes de Desacato",
		},
		ContemptCategories: []string{
			"Incidentes de Desacato",
			"Movimiento de Tutelas",
		},
		Calendar: calendar.DefaultPolicy(),
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("scoring policy: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("scoring policy: parse yaml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("scoring policy: %w", err)
	}
	return p, nil
}

// Validate checks structural constraints on the policy
func (p Policy) Validate() error {
	if p.OralWeight <= 0 || p.StandardWeight <= 0 {
		return fmt.Errorf("subfactor weights must be positive")
	}
	if p.HearingWeight < 0 {
		return fmt.Errorf("hearing_weight must not be negative")
	}
	if p.LateIntakeFromMonth < time.January || p.LateIntakeFromMonth > time.December {
		return fmt.Errorf("late_intake_from_month %d is out of range [1, 12]", p.LateIntakeFromMonth)
	}
	return p.Calendar.Validate()
}

func (p Policy) isConstitutional(category string) bool {
	return contains(p.ConstitutionalCategories, category)
}

func (p Policy) isContempt(category string) bool {
	return contains(p.ContemptCategories, category)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

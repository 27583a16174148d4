// Package scenario loads a YAML scenario file describing a roster and a
// block to schedule, so the CLI does not need to be handed a request on
// the command line.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clinicrota/oncallgen/internal/scheduler"
)

// Date wraps time.Time so the YAML decoder can parse bare "YYYY-MM-DD"
// scalars directly into scenario fields.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// StaffEntry is one roster member as written in a scenario file.
type StaffEntry struct {
	Name            string   `yaml:"name"`
	Role            string   `yaml:"role"`
	TargetShifts    int      `yaml:"target_shifts"`
	UnavailableDays []string `yaml:"unavailable_days"`
}

// Scenario is the top-level shape of a scenario YAML file.
type Scenario struct {
	StartDate  Date         `yaml:"start_date"`
	NumDays    int          `yaml:"num_days"`
	RandomSeed *int64       `yaml:"random_seed"`
	Staff      []StaffEntry `yaml:"staff"`
}

// LoadFromBytes parses YAML bytes into a Scenario and validates it.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFromFile reads and parses a scenario YAML file.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return LoadFromBytes(data)
}

func (s *Scenario) validate() error {
	if s.StartDate.Time.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if len(s.Staff) == 0 {
		return fmt.Errorf("at least one staff entry is required")
	}
	for _, st := range s.Staff {
		if st.Name == "" {
			return fmt.Errorf("staff entry missing name")
		}
		if st.Role == "" {
			return fmt.Errorf("staff %q missing role", st.Name)
		}
	}
	return nil
}

// Request converts the scenario into a scheduler.Request, applying the
// scheduler's own default num_days when the scenario omits one.
func (s *Scenario) Request() scheduler.Request {
	staffInputs := make([]scheduler.StaffInput, len(s.Staff))
	for i, st := range s.Staff {
		target := st.TargetShifts
		if target == 0 {
			target = 7
		}
		staffInputs[i] = scheduler.StaffInput{
			Name:            st.Name,
			Role:            st.Role,
			TargetShifts:    target,
			UnavailableDays: st.UnavailableDays,
		}
	}

	return scheduler.Request{
		Staff:      staffInputs,
		StartDate:  s.StartDate.Time.Format("2006-01-02"),
		NumDays:    s.NumDays,
		RandomSeed: s.RandomSeed,
	}
}

// Package staff models the on-call roster's personnel: their role,
// target shift load, and personal unavailability.
package staff

import (
	"sort"
	"time"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/schederr"
)

// Role is an ordered enumeration; higher roles can cover for lower ones in
// the pairing rule (a Senior can always work alone or pair with a Junior).
type Role int

const (
	Junior Role = iota
	Intermediate
	Senior
)

func (r Role) String() string {
	switch r {
	case Junior:
		return "Junior"
	case Intermediate:
		return "Intermediate"
	case Senior:
		return "Senior"
	default:
		return "Unknown"
	}
}

// ParseRole parses a role string from the canonical, case-sensitive set.
func ParseRole(s string) (Role, error) {
	switch s {
	case "Junior":
		return Junior, nil
	case "Intermediate":
		return Intermediate, nil
	case "Senior":
		return Senior, nil
	default:
		return 0, schederr.Newf(schederr.InvalidRole, "invalid role %q, must be one of Junior, Intermediate, Senior", s)
	}
}

// Staff is an immutable roster entry for the duration of a solve.
type Staff struct {
	Name            string
	Role            Role
	TargetShifts    int
	UnavailableDays map[time.Time]bool
}

// New builds a Staff record from request-shaped fields. Unavailable day
// strings must each be a valid ISO date; they need not fall within any
// particular block — out-of-block dates are silently ignored at
// constraint-build time.
func New(name string, role Role, targetShifts int, unavailableDays []string) (*Staff, error) {
	days := make(map[time.Time]bool, len(unavailableDays))
	for _, raw := range unavailableDays {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		days[d] = true
	}
	return &Staff{
		Name:            name,
		Role:            role,
		TargetShifts:    targetShifts,
		UnavailableDays: days,
	}, nil
}

// IsUnavailable reports whether the staff member is unavailable on date.
func (s *Staff) IsUnavailable(date time.Time) bool {
	return s.UnavailableDays[date]
}

// SortedUnavailableDays returns the unavailable dates in ascending order,
// formatted as ISO strings. Useful for display and deterministic tests.
func (s *Staff) SortedUnavailableDays() []string {
	out := make([]string, 0, len(s.UnavailableDays))
	for d := range s.UnavailableDays {
		out = append(out, d.Format("2006-01-02"))
	}
	sort.Strings(out)
	return out
}

// Partition splits a staff list by role, preserving input order within
// each group. Returned slices hold indices into list.
func Partition(list []*Staff) (seniors, intermediates, juniors []int) {
	for i, s := range list {
		switch s.Role {
		case Senior:
			seniors = append(seniors, i)
		case Intermediate:
			intermediates = append(intermediates, i)
		case Junior:
			juniors = append(juniors, i)
		}
	}
	return
}

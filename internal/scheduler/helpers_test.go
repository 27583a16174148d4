package scheduler

import (
	"testing"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/staff"
)

func testBlock(t *testing.T, start string, numDays int) (*calendar.Block, error) {
	t.Helper()
	return calendar.NewBlock(start, numDays)
}

func testStaff(t *testing.T) []*staff.Staff {
	t.Helper()
	mk := func(name string, role staff.Role, target int) *staff.Staff {
		s, err := staff.New(name, role, target, nil)
		if err != nil {
			t.Fatalf("staff.New(%s): %v", name, err)
		}
		return s
	}
	return []*staff.Staff{
		mk("Alice", staff.Senior, 7),
		mk("Bob", staff.Senior, 7),
		mk("Carol", staff.Intermediate, 7),
		mk("Dave", staff.Junior, 7),
	}
}

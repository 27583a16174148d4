package scheduler

import (
	"fmt"
	"sort"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/schederr"
	"github.com/clinicrota/oncallgen/internal/staff"
)

// ScheduleDay is one covered date: either a solo coverage (Solo set, Senior
// and Junior empty) or a pair (Senior and Junior both set).
type ScheduleDay struct {
	Date   string
	Solo   string
	Senior string
	Junior string
}

// IsPair reports whether this day is covered by a Senior+Junior pair.
func (d ScheduleDay) IsPair() bool { return d.Senior != "" }

// Display renders the day for the response envelope: the solo name, or
// "<senior> (Sr) + <junior> (Jr)".
func (d ScheduleDay) Display() string {
	if d.IsPair() {
		return fmt.Sprintf("%s (Sr) + %s (Jr)", d.Senior, d.Junior)
	}
	return d.Solo
}

// Tally is a staff member's per-block workload summary.
type Tally struct {
	Role          string   `json:"role"`
	Target        int      `json:"target"`
	Actual        int      `json:"actual"`
	WeekendShifts int      `json:"weekend_shifts"`
	FridayShifts  int      `json:"friday_shifts"`
	Days          []string `json:"days"`
}

// decode converts a satisfying assignment into the ordered schedule and
// per-staff tallies.
func decode(bm *builtModel, response *cmpb.CpSolverResponse, block *calendar.Block, staffList []*staff.Staff) ([]ScheduleDay, map[string]Tally, error) {
	return decodeAssignment(block, staffList, func(s, d int) bool {
		return boolValue(response, bm.shifts[shiftKey{s, d}])
	})
}

// decodeAssignment holds the solver-independent half of decode: given a
// predicate reporting whether staff s worked day d, it builds the ordered
// schedule and per-staff tallies. Split out from decode so the defensive
// DecodeInvariant branches can be driven directly with a hand-built
// assignment in tests, without needing a real CP-SAT solver response.
func decodeAssignment(block *calendar.Block, staffList []*staff.Staff, assigned func(s, d int) bool) ([]ScheduleDay, map[string]Tally, error) {
	days := make([]ScheduleDay, 0, block.NumDays)

	for d := 0; d < block.NumDays; d++ {
		var working []int
		for s := range staffList {
			if assigned(s, d) {
				working = append(working, s)
			}
		}

		entry := ScheduleDay{Date: block.DateString(d)}
		switch len(working) {
		case 1:
			entry.Solo = staffList[working[0]].Name
		case 2:
			seniorName, juniorName, ok := findSeniorJunior(staffList, working)
			if !ok {
				return nil, nil, schederr.Newf(schederr.DecodeInvariant,
					"day %s covered by 2 staff with no senior+junior split", entry.Date)
			}
			entry.Senior = seniorName
			entry.Junior = juniorName
		default:
			return nil, nil, schederr.Newf(schederr.DecodeInvariant,
				"day %s covered by %d staff, coverage rule requires 1 or 2", entry.Date, len(working))
		}

		days = append(days, entry)
	}

	if len(days) != block.NumDays {
		return nil, nil, schederr.Newf(schederr.NoSolution,
			"Schedule generation error: expected %d days, got %d", block.NumDays, len(days))
	}

	tallies := make(map[string]Tally, len(staffList))
	for s, st := range staffList {
		var actual, weekend, friday int
		var assignedDays []string
		for d := 0; d < block.NumDays; d++ {
			if !assigned(s, d) {
				continue
			}
			actual++
			assignedDays = append(assignedDays, block.DateString(d))
		}
		for _, d := range block.WeekendIndices() {
			if assigned(s, d) {
				weekend++
			}
		}
		for _, d := range block.FridayIndices() {
			if assigned(s, d) {
				friday++
			}
		}
		sort.Strings(assignedDays)

		tallies[st.Name] = Tally{
			Role:          st.Role.String(),
			Target:        st.TargetShifts,
			Actual:        actual,
			WeekendShifts: weekend,
			FridayShifts:  friday,
			Days:          assignedDays,
		}
	}

	return days, tallies, nil
}

func findSeniorJunior(staffList []*staff.Staff, working []int) (senior, junior string, ok bool) {
	for _, s := range working {
		switch staffList[s].Role {
		case staff.Senior:
			senior = staffList[s].Name
		case staff.Junior:
			junior = staffList[s].Name
		}
	}
	return senior, junior, senior != "" && junior != ""
}

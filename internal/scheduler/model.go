package scheduler

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/staff"
)

// shiftKey indexes the x[s,d] decision variable: staff s is on call on
// block-local day d.
type shiftKey struct {
	staff int
	day   int
}

// builtModel holds the CP-SAT model and the variable table needed to decode
// a solution back into a schedule.
type builtModel struct {
	builder *cpmodel.CpModelBuilder
	shifts  map[shiftKey]cpmodel.BoolVar
}

// buildModel encodes the coverage, personal, and fairness constraints over
// one boolean variable per (staff, day) pair.
func buildModel(block *calendar.Block, staffList []*staff.Staff, phase Phase) *builtModel {
	b := cpmodel.NewCpModelBuilder()

	shifts := make(map[shiftKey]cpmodel.BoolVar, len(staffList)*block.NumDays)
	for s := range staffList {
		for d := 0; d < block.NumDays; d++ {
			shifts[shiftKey{s, d}] = b.NewBoolVar().WithName(fmt.Sprintf("x_s%d_d%d", s, d))
		}
	}

	seniors, intermediates, juniors := staff.Partition(staffList)

	addCoverageConstraints(b, shifts, block, len(staffList), seniors, intermediates, juniors)
	addNoBackToBack(b, shifts, staffList, block)
	addUnavailability(b, shifts, staffList, block)
	addJuniorPairing(b, shifts, seniors, juniors, block)
	addTargetBand(b, shifts, staffList, block, phase)
	addWeekendBalance(b, shifts, staffList, block)
	addFridayBalance(b, shifts, staffList, block)

	return &builtModel{builder: b, shifts: shifts}
}

// sumOf builds a linear expression summing the given staff's shift
// variables on day d.
func sumOf(shifts map[shiftKey]cpmodel.BoolVar, indices []int, d int) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, s := range indices {
		expr.Add(shifts[shiftKey{s, d}])
	}
	return expr
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// addCoverageConstraints encodes: a day is covered by one Intermediate, or
// one Senior, or one Senior + one Junior (never any other combination).
func addCoverageConstraints(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, block *calendar.Block, numStaff int, seniors, intermediates, juniors []int) {
	all := allIndices(numStaff)

	for d := 0; d < block.NumDays; d++ {
		seniorExpr := sumOf(shifts, seniors, d)
		intermediateExpr := sumOf(shifts, intermediates, d)
		juniorExpr := sumOf(shifts, juniors, d)
		totalExpr := sumOf(shifts, all, d)

		b.AddLessOrEqual(cpmodel.NewConstant(1), totalExpr)
		b.AddLessOrEqual(totalExpr, cpmodel.NewConstant(2))

		isPair := b.NewBoolVar().WithName(fmt.Sprintf("pair_d%d", d))

		b.AddEquality(totalExpr, cpmodel.NewConstant(2)).OnlyEnforceIf(isPair)
		b.AddEquality(seniorExpr, cpmodel.NewConstant(1)).OnlyEnforceIf(isPair)
		b.AddEquality(juniorExpr, cpmodel.NewConstant(1)).OnlyEnforceIf(isPair)
		b.AddEquality(intermediateExpr, cpmodel.NewConstant(0)).OnlyEnforceIf(isPair)

		notPair := isPair.Not()
		soloExpr := cpmodel.NewLinearExpr().Add(intermediateExpr).Add(seniorExpr)
		b.AddEquality(totalExpr, cpmodel.NewConstant(1)).OnlyEnforceIf(notPair)
		b.AddEquality(soloExpr, cpmodel.NewConstant(1)).OnlyEnforceIf(notPair)
		b.AddEquality(juniorExpr, cpmodel.NewConstant(0)).OnlyEnforceIf(notPair)

		// Redundant but tightens propagation.
		b.AddGreaterOrEqual(seniorExpr, juniorExpr)
	}
}

// addNoBackToBack forbids any staff member from two consecutive on-call days.
func addNoBackToBack(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, block *calendar.Block) {
	for s := range staffList {
		for d := 0; d < block.NumDays-1; d++ {
			pair := cpmodel.NewLinearExpr().Add(shifts[shiftKey{s, d}]).Add(shifts[shiftKey{s, d + 1}])
			b.AddLessOrEqual(pair, cpmodel.NewConstant(1))
		}
	}
}

// addUnavailability zeroes out x[s,d] for every day a staff member marked
// themselves unavailable, when that day falls within the block.
func addUnavailability(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, block *calendar.Block) {
	for s, st := range staffList {
		for date := range st.UnavailableDays {
			d, ok := block.IndexOf(date)
			if !ok {
				continue
			}
			b.AddEquality(shifts[shiftKey{s, d}], cpmodel.NewConstant(0))
		}
	}
}

// addJuniorPairing makes explicit (the coverage rule already implies it)
// that a Junior on call requires a Senior on call the same day.
func addJuniorPairing(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, seniors, juniors []int, block *calendar.Block) {
	for _, j := range juniors {
		for d := 0; d < block.NumDays; d++ {
			seniorExpr := sumOf(shifts, seniors, d)
			b.AddGreaterOrEqual(seniorExpr, shifts[shiftKey{j, d}])
		}
	}
}

// addTargetBand posts the per-staff shift-count bound. Strict phase keeps
// actual within one of target in both directions; relaxed phase drops the
// upper bound and only requires at least one shift.
func addTargetBand(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, block *calendar.Block, phase Phase) {
	for s, st := range staffList {
		totalExpr := cpmodel.NewLinearExpr()
		for d := 0; d < block.NumDays; d++ {
			totalExpr.Add(shifts[shiftKey{s, d}])
		}

		switch phase {
		case PhaseRelaxed:
			b.AddGreaterOrEqual(totalExpr, cpmodel.NewConstant(1))
		default:
			minShifts := st.TargetShifts - 1
			if minShifts < 0 {
				minShifts = 0
			}
			maxShifts := st.TargetShifts + 1
			b.AddGreaterOrEqual(totalExpr, cpmodel.NewConstant(int64(minShifts)))
			b.AddLessOrEqual(totalExpr, cpmodel.NewConstant(int64(maxShifts)))
		}
	}
}

// addWeekendBalance keeps the max and min per-staff weekend shift counts
// within 1 of each other, skipped when there are no weekend days or fewer
// than two staff.
func addWeekendBalance(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, block *calendar.Block) {
	addBalance(b, shifts, staffList, block.WeekendIndices(), "weekend")
}

// addFridayBalance is the Friday-count analogue of addWeekendBalance.
func addFridayBalance(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, block *calendar.Block) {
	addBalance(b, shifts, staffList, block.FridayIndices(), "friday")
}

func addBalance(b *cpmodel.CpModelBuilder, shifts map[shiftKey]cpmodel.BoolVar, staffList []*staff.Staff, dayIndices []int, label string) {
	if len(dayIndices) == 0 || len(staffList) < 2 {
		return
	}

	minVar := b.NewIntVar(0, int64(len(dayIndices))).WithName(fmt.Sprintf("min_%s", label))
	maxVar := b.NewIntVar(0, int64(len(dayIndices))).WithName(fmt.Sprintf("max_%s", label))

	for s := range staffList {
		countExpr := cpmodel.NewLinearExpr()
		for _, d := range dayIndices {
			countExpr.Add(shifts[shiftKey{s, d}])
		}
		b.AddLessOrEqual(minVar, countExpr)
		b.AddGreaterOrEqual(maxVar, countExpr)
	}

	diff := cpmodel.NewLinearExpr().Add(maxVar).AddTerm(minVar, -1)
	b.AddLessOrEqual(diff, cpmodel.NewConstant(1))
}

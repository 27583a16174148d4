// Package scheduler is the on-call roster core: it builds a CP-SAT
// constraint model from a request, solves it (with a relaxation fallback),
// and decodes the result into a schedule and per-staff tallies.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/schederr"
	"github.com/clinicrota/oncallgen/internal/staff"
)

// DefaultNumDays is used when a Request omits NumDays.
const DefaultNumDays = 28

// StaffInput is one staff entry in a Request, in request-wire shape
// (strings in, not yet parsed).
type StaffInput struct {
	Name            string
	Role            string
	TargetShifts    int
	UnavailableDays []string
}

// Request is the typed input to Run.
type Request struct {
	Staff      []StaffInput
	StartDate  string
	NumDays    int
	RandomSeed *int64
}

// Response is the typed output of Run. Exactly one of the success fields
// (Schedule/StaffAssignments) or Message is meaningful, discriminated by
// Status.
type Response struct {
	Status           string
	StartDate        string
	EndDate          string
	Schedule         []ScheduleDay
	StaffAssignments map[string]Tally
	Message          string
}

// MarshalJSON emits the response envelope with the "schedule" object's
// keys in ascending date order regardless of Go map iteration order.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, "%q:%q", "status", r.Status)

	if r.Status != "success" {
		fmt.Fprintf(&buf, ",%q:%q", "message", r.Message)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, ",%q:%q,%q:%q", "start_date", r.StartDate, "end_date", r.EndDate)

	buf.WriteString(`,"schedule":{`)
	for i, day := range r.Schedule {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(day.Date)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if day.IsPair() {
			valJSON, err := json.Marshal(map[string]string{
				"senior":  day.Senior,
				"junior":  day.Junior,
				"display": day.Display(),
			})
			if err != nil {
				return nil, err
			}
			buf.Write(valJSON)
		} else {
			valJSON, _ := json.Marshal(day.Solo)
			buf.Write(valJSON)
		}
	}
	buf.WriteString("}")

	assignmentsJSON, err := json.Marshal(r.StaffAssignments)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"staff_assignments":`)
	buf.Write(assignmentsJSON)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Run validates req, builds the constraint model, solves it (falling back
// to the relaxed phase on strict-phase infeasibility), and decodes the
// result. It never panics on malformed input: every failure is surfaced as
// either a *schederr.Error (validation, decode-invariant) or a
// Response{Status: "no_solution"}.
func Run(ctx context.Context, req Request, log *zap.Logger) (*Response, error) {
	if log == nil {
		log = zap.NewNop()
	}

	numDays := req.NumDays
	if numDays == 0 {
		numDays = DefaultNumDays
	}

	staffList, block, err := validateAndBuild(req, numDays)
	if err != nil {
		log.Info("request rejected", zap.Error(err))
		return nil, err
	}

	log.Info("scheduling request accepted",
		zap.Int("staff_count", len(staffList)),
		zap.Int("num_days", numDays),
		zap.String("start_date", req.StartDate),
	)

	if err := ctx.Err(); err != nil {
		return nil, schederr.Wrap(schederr.InternalError, "context cancelled before solve", err)
	}

	seed := resolveSeed(req.RandomSeed)

	resp, err := attemptPhase(ctx, block, staffList, PhaseStrict, seed, log)
	if err == nil {
		return resp, nil
	}
	if !schederr.Is(err, schederr.NoSolution) {
		return nil, err
	}

	log.Info("strict phase infeasible, attempting relaxation", zap.Int64("seed", seed))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, schederr.Wrap(schederr.InternalError, "context cancelled before relaxed solve", ctxErr)
	}

	resp, err = attemptPhase(ctx, block, staffList, PhaseRelaxed, seed, log)
	if err == nil {
		return resp, nil
	}
	if schederr.Is(err, schederr.NoSolution) {
		log.Info("relaxed phase also infeasible")
		return &Response{Status: "no_solution", Message: "Could not find a valid schedule that satisfies all constraints"}, nil
	}
	return nil, err
}

func attemptPhase(ctx context.Context, block *calendar.Block, staffList []*staff.Staff, phase Phase, seed int64, log *zap.Logger) (*Response, error) {
	bm, response, err := solvePhase(block, staffList, phase, seed, log)
	if err != nil {
		return nil, err
	}

	days, tallies, err := decode(bm, response, block, staffList)
	if err != nil {
		if schederr.Is(err, schederr.NoSolution) {
			return &Response{Status: "no_solution", Message: err.Error()}, nil
		}
		return nil, err
	}

	return &Response{
		Status:           "success",
		StartDate:        block.DateString(0),
		EndDate:          block.DateString(block.NumDays - 1),
		Schedule:         days,
		StaffAssignments: tallies,
	}, nil
}

// validateAndBuild performs the semantic validation the constraint model
// cannot express (roster cardinality, role set, target bounds) and, if it
// passes, parses the request into Staff records and a Block.
func validateAndBuild(req Request, numDays int) ([]*staff.Staff, *calendar.Block, error) {
	if len(req.Staff) < 2 {
		return nil, nil, schederr.Newf(schederr.InsufficientStaff,
			"at least 2 staff are required, got %d", len(req.Staff))
	}

	block, err := calendar.NewBlock(req.StartDate, numDays)
	if err != nil {
		return nil, nil, err
	}

	staffList := make([]*staff.Staff, 0, len(req.Staff))
	hasJunior, hasSenior := false, false

	for _, in := range req.Staff {
		role, err := staff.ParseRole(in.Role)
		if err != nil {
			return nil, nil, err
		}
		if in.TargetShifts < 1 {
			return nil, nil, schederr.Newf(schederr.InvalidRange,
				"staff %q: target_shifts must be >= 1, got %d", in.Name, in.TargetShifts)
		}

		s, err := staff.New(in.Name, role, in.TargetShifts, in.UnavailableDays)
		if err != nil {
			return nil, nil, err
		}
		staffList = append(staffList, s)

		switch role {
		case staff.Junior:
			hasJunior = true
		case staff.Senior:
			hasSenior = true
		}
	}

	if hasJunior && !hasSenior {
		return nil, nil, schederr.New(schederr.MissingSenior,
			"at least one Senior is required when any Junior is present")
	}

	return staffList, block, nil
}

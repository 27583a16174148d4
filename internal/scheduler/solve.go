package scheduler

import (
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/clinicrota/oncallgen/internal/calendar"
	"github.com/clinicrota/oncallgen/internal/schederr"
	"github.com/clinicrota/oncallgen/internal/staff"
)

// maxSolveTime is the wall-clock budget given to each solve phase.
const maxSolveTime = 30 * time.Second

// solvePhase builds the model for phase and runs CP-SAT against it once,
// returning the raw response on OPTIMAL/FEASIBLE status.
func solvePhase(block *calendar.Block, staffList []*staff.Staff, phase Phase, seed int64, log *zap.Logger) (*builtModel, *cmpb.CpSolverResponse, error) {
	start := time.Now()
	bm := buildModel(block, staffList, phase)

	modelProto, err := bm.builder.Model()
	if err != nil {
		return nil, nil, schederr.Wrap(schederr.InternalError, "failed to instantiate CP model", err)
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(maxSolveTime.Seconds()),
		RandomSeed:       proto.Int32(int32(seed)),
	}

	response, err := cpmodel.SolveCpModelWithParameters(modelProto, params)
	if err != nil {
		return nil, nil, schederr.Wrap(schederr.InternalError, "CP-SAT solve failed", err)
	}

	log.Debug("solve phase complete",
		zap.String("phase", phase.String()),
		zap.Int64("seed", seed),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("status", response.GetStatus().String()),
	)

	status := response.GetStatus()
	if status == cmpb.CpSolverStatus_OPTIMAL || status == cmpb.CpSolverStatus_FEASIBLE {
		return bm, response, nil
	}

	return nil, nil, schederr.Newf(schederr.NoSolution, "%s phase returned status %s", phase.String(), status.String())
}

// resolveSeed returns the caller-supplied seed, or derives one from the
// current wall-clock time when none is given.
func resolveSeed(requested *int64) int64 {
	if requested != nil {
		return *requested
	}
	const mersennePrime31 = (1 << 31) - 1
	return time.Now().UnixMilli() % mersennePrime31
}

func boolValue(response *cmpb.CpSolverResponse, v cpmodel.BoolVar) bool {
	return cpmodel.SolutionBooleanValue(response, v)
}

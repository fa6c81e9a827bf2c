// Package executor implements transactional plan application (spec section
// 4.6): sequential per-operation execution against the live stores, with
// either a halt-and-report or an auto-rollback failure path, exactly one
// audit entry per non-dry-run invocation, and a manual Undo path that
// replays an applied plan's reversed operations.
//
// Grounded on warren's pkg/reconciler (sequential step execution against a
// live manager, one metrics.Timer per reconcile, structured log per step)
// and pkg/manager's apply loop for the halt-vs-rollback shape; here the
// steps are SlotBinding mutations instead of container lifecycle calls.
package executor

import (
	"fmt"
	"time"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/lock"
	"github.com/hyperpolymath/reposystem/pkg/log"
	"github.com/hyperpolymath/reposystem/pkg/metrics"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// Options controls one Apply invocation.
type Options struct {
	// DryRun skips locking, execution, and audit entirely: the plan and its
	// already-derived diff are left untouched. Apply returns a zero
	// AuditEntry and a nil error.
	DryRun bool

	// NoAutoRollback selects the halt-and-report failure path (the plan
	// stops at partial_failure) instead of the default auto-rollback path.
	NoAutoRollback bool

	// SkipHealthCheck skips the post-apply invariant check on success.
	SkipHealthCheck bool
}

// Apply executes plan's operations in order against st, per spec section
// 4.6. On success it marks the plan applied and runs a post-apply health
// check (unless skipped); on failure it either halts (partial_failure) or
// rolls back the operations it already executed, in strict reverse order,
// via their compensating ops. A failed SwitchBinding is compensated first,
// since it may already have removed the consumer's previous binding. Any
// outcome other than success returns the plan to draft and an error.
// Exactly one audit entry is appended and the
// store is saved before Apply returns, whether or not it returns an error.
func Apply(dataDir string, st *store.Store, oracle *compat.Oracle, plan model.Plan, operator string, opts Options) (model.AuditEntry, error) {
	if plan.Status == model.PlanApplied {
		return model.AuditEntry{}, apperr.New(apperr.InvariantViolation, "plan already applied: "+plan.ID)
	}
	if opts.DryRun {
		return model.AuditEntry{}, nil
	}

	dl, err := lock.Acquire(dataDir)
	if err != nil {
		return model.AuditEntry{}, err
	}
	defer dl.Release()

	logger := log.WithPlanID("executor", plan.ID)
	timer := metrics.NewTimer()
	started := time.Now().UTC()

	var opResults []model.OpResult
	var executed []model.Operation
	failedAt := -1

	for i, op := range plan.Operations {
		execErr := executeOp(st, oracle, op, operator)
		res := model.OpResult{OpIndex: i, Success: execErr == nil, ExecutedAt: time.Now().UTC()}
		if execErr != nil {
			res.Error = execErr.Error()
			opResults = append(opResults, res)
			failedAt = i
			logger.Error().Msg(fmt.Sprintf("operation %d (%s) failed: %v", i, op.Kind, execErr))
			break
		}
		opResults = append(opResults, res)
		executed = append(executed, op)
	}

	result := model.ApplySuccess
	autoRollback := false

	if failedAt >= 0 {
		if opts.NoAutoRollback {
			result = model.ApplyPartialFailure
		} else {
			autoRollback = true
			rollbackFailed := false
			if failed := plan.Operations[failedAt]; failed.Kind == model.OpSwitchBinding {
				// A failed switch may already have removed the consumer's
				// previous binding, so it is compensated with the others.
				executed = append(executed, failed)
			}
			for i := len(executed) - 1; i >= 0; i-- {
				rev, ok := reverse(executed[i])
				if !ok {
					continue
				}
				if err := executeOp(st, oracle, rev, operator); err != nil {
					rollbackFailed = true
					logger.Error().Msg(fmt.Sprintf("rollback of operation %d (%s) failed: %v", i, executed[i].Kind, err))
				}
			}
			if rollbackFailed {
				result = model.ApplyFailure
			} else {
				result = model.ApplyRolledBack
			}
		}
	}

	var healthNotes []string
	healthRun := false
	healthPassed := true
	if result == model.ApplySuccess && !opts.SkipHealthCheck {
		healthRun = true
		healthNotes = runHealthCheck(st, oracle)
		healthPassed = len(healthNotes) == 0
	}

	finished := time.Now().UTC()
	entry := model.AuditEntry{
		ID:                    ids.AuditID(plan.ID, finished.Unix()),
		PlanID:                plan.ID,
		Result:                result,
		OpResults:             opResults,
		StartedAt:             started,
		FinishedAt:            finished,
		Operator:              operator,
		AutoRollbackTriggered: autoRollback,
		HealthCheckRun:        healthRun,
		HealthCheckPassed:     healthPassed,
		Notes:                 healthNotes,
	}

	switch result {
	case model.ApplySuccess:
		applied := finished
		plan.Status = model.PlanApplied
		plan.AppliedAt = &applied
	case model.ApplyRolledBack, model.ApplyPartialFailure, model.ApplyFailure:
		plan.Status = model.PlanDraft
	}
	st.Plan.PutPlan(plan)

	if err := st.Audit.Append(entry); err != nil {
		return entry, err
	}
	if err := st.SaveAll(); err != nil {
		return entry, err
	}

	timer.ObserveDuration(metrics.ApplyDuration)
	metrics.AppliesTotal.WithLabelValues(string(result)).Inc()
	logger.Info().Msg(fmt.Sprintf("apply finished: result=%s ops=%d duration=%s", result, len(plan.Operations), timer.Duration()))

	switch result {
	case model.ApplyPartialFailure:
		return entry, apperr.New(apperr.OperationFailed, fmt.Sprintf("apply halted at operation %d", failedAt))
	case model.ApplyRolledBack:
		return entry, apperr.New(apperr.OperationFailed, fmt.Sprintf("apply failed at operation %d and was rolled back", failedAt))
	case model.ApplyFailure:
		return entry, apperr.New(apperr.RollbackFailed, fmt.Sprintf("apply failed at operation %d and rollback also failed", failedAt))
	default:
		return entry, nil
	}
}

// Undo replays plan's operations in strict reverse order via their
// compensating ops, regardless of how the plan reached PlanApplied (a prior
// successful Apply). It is the only way to leave an applied plan back at
// PlanDraft; auto-rollback during a failed Apply is a distinct path that
// never calls Undo.
func Undo(dataDir string, st *store.Store, oracle *compat.Oracle, plan model.Plan, operator string) (model.AuditEntry, error) {
	if plan.Status != model.PlanApplied {
		return model.AuditEntry{}, apperr.New(apperr.InvariantViolation, "plan is not applied, cannot undo: "+plan.ID)
	}

	dl, err := lock.Acquire(dataDir)
	if err != nil {
		return model.AuditEntry{}, err
	}
	defer dl.Release()

	logger := log.WithPlanID("executor", plan.ID)
	timer := metrics.NewTimer()
	started := time.Now().UTC()

	var opResults []model.OpResult
	failed := false
	idx := 0
	for i := len(plan.Operations) - 1; i >= 0; i-- {
		rev, ok := reverse(plan.Operations[i])
		if !ok {
			continue
		}
		execErr := executeOp(st, oracle, rev, operator)
		res := model.OpResult{OpIndex: idx, Success: execErr == nil, ExecutedAt: time.Now().UTC()}
		if execErr != nil {
			res.Error = execErr.Error()
			failed = true
			logger.Error().Msg(fmt.Sprintf("undo step %d (%s) failed: %v", idx, rev.Kind, execErr))
		}
		opResults = append(opResults, res)
		idx++
	}

	result := model.ApplyRolledBack
	if failed {
		result = model.ApplyPartialFailure
	}

	finished := time.Now().UTC()
	entry := model.AuditEntry{
		ID:             ids.UndoAuditID(plan.ID, finished.Unix()),
		PlanID:         plan.ID,
		Result:         result,
		OpResults:      opResults,
		StartedAt:      started,
		FinishedAt:     finished,
		Operator:       operator,
		RollbackPlanID: plan.ID,
	}

	if result == model.ApplyRolledBack {
		plan.Status = model.PlanDraft
		plan.AppliedAt = nil
	}
	st.Plan.PutPlan(plan)

	if err := st.Audit.Append(entry); err != nil {
		return entry, err
	}
	if err := st.SaveAll(); err != nil {
		return entry, err
	}

	timer.ObserveDuration(metrics.ApplyDuration)
	metrics.AppliesTotal.WithLabelValues("undo_" + string(result)).Inc()
	logger.Info().Msg(fmt.Sprintf("undo finished: result=%s duration=%s", result, timer.Duration()))

	if result == model.ApplyPartialFailure {
		return entry, apperr.New(apperr.RollbackFailed, "undo did not fully reverse plan "+plan.ID)
	}
	return entry, nil
}

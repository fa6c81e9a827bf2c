/*
Package planner implements plan derivation (spec section 4.5): reading a
scenario's changeset against the current slot bindings and the
compatibility oracle, it emits an ordered list of operations with per-op
and overall risk, plus a diff summary.

Grounded on warren's pkg/scheduler, which scores candidate node placements
and emits an ordered decision list; here the scoring target is a provider
switch's risk instead of a task's placement fitness.
*/
package planner

import (
	"time"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/log"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// Options control derivation policy.
type Options struct {
	// Aggressive opts into emitting CreateBinding ops for compatible
	// (consumer, slot) pairs that have no binding yet, even when the
	// scenario's changeset doesn't request it. Spec section 9 requires
	// conservative (false) as the default.
	Aggressive bool
}

// Derive implements spec section 4.5's algorithm against the snapshot held
// by gs/ss/as, for the scenario identified by scenarioID.
func Derive(gs *store.GraphStore, ss *store.SlotStore, as *store.AspectStore, oracle *compat.Oracle, scenarioID string, opts Options) (model.Plan, model.PlanDiff) {
	var ops []model.Operation

	ops = append(ops, deriveSwitches(ss, oracle, as)...)
	ops = append(ops, deriveFromChangeSet(gs, ss, oracle, as, scenarioID)...)
	if opts.Aggressive {
		ops = append(ops, deriveAggressiveCreates(ss, oracle, as)...)
	}

	overall := model.RiskLow
	for _, op := range ops {
		overall = model.MaxRisk(overall, op.Risk)
	}

	now := time.Now().UTC()
	plan := model.Plan{
		ID:          ids.PlanID(scenarioID, now.Format(ids.TimestampLayout)),
		ScenarioID:  scenarioID,
		Status:      model.PlanReady,
		Operations:  ops,
		OverallRisk: overall,
		CreatedAt:   now,
	}

	log.WithScenarioID("planner", scenarioID).Info().
		Msgf("plan derived: plan_id=%s ops=%d overall_risk=%s", plan.ID, len(ops), overall)

	diff := model.PlanDiff{PlanID: plan.ID}
	for _, op := range ops {
		switch op.Kind {
		case model.OpSwitchBinding:
			diff.BindingsChanged++
		case model.OpCreateBinding:
			diff.BindingsCreated++
		case model.OpRemoveBinding:
			diff.BindingsRemoved++
		case model.OpFileChange:
			diff.FilesAffected++
			diff.FileDiffs = append(diff.FileDiffs, model.FileDiffPreview{
				Path:   op.FilePath,
				Change: op.DiffPreview,
			})
		}
	}

	return plan, diff
}

// deriveSwitches implements the default policy: for each current binding,
// switch to a higher-priority, non-fallback, compatible alternative
// provider of the same slot, if one exists.
func deriveSwitches(ss *store.SlotStore, oracle *compat.Oracle, as *store.AspectStore) []model.Operation {
	var ops []model.Operation
	for _, b := range ss.ListBindings() {
		cur, ok := ss.GetProvider(b.ProviderID)
		if !ok {
			continue
		}
		slot, ok := ss.GetSlot(b.SlotID)
		if !ok {
			continue
		}

		var best *model.Provider
		for _, candidate := range ss.ProvidersForSlot(b.SlotID) {
			candidate := candidate
			if candidate.ID == cur.ID || candidate.Fallback || candidate.Priority <= cur.Priority {
				continue
			}
			if best != nil && candidate.Priority <= best.Priority {
				continue
			}
			result := oracle.Check(&slot, &candidate)
			if !result.Compatible {
				continue
			}
			best = &candidate
		}

		if best == nil {
			continue
		}

		op := model.Operation{
			Kind:              model.OpSwitchBinding,
			ConsumerID:        b.ConsumerID,
			SlotID:            b.SlotID,
			CurrentProviderID: cur.ID,
			TargetProviderID:  best.ID,
			BindingID:         b.ID,
		}
		op.Risk = risk(&cur, best, &slot, as, b.ConsumerID)
		ops = append(ops, op)
	}
	return ops
}

// deriveFromChangeSet emits CreateBinding/RemoveBinding/SwitchBinding ops
// directly from the scenario's declared change ops, regardless of priority
// ordering — this is the escape hatch from the conservative default.
func deriveFromChangeSet(gs *store.GraphStore, ss *store.SlotStore, oracle *compat.Oracle, as *store.AspectStore, scenarioID string) []model.Operation {
	cs := gs.ChangeSetFor(scenarioID)
	var ops []model.Operation

	for _, change := range cs.Ops {
		switch change.Kind {
		case model.ChangeCreateBinding:
			slot, ok := ss.GetSlot(change.SlotID)
			if !ok {
				continue
			}
			provider, ok := ss.GetProvider(change.ProviderID)
			if !ok {
				continue
			}
			op := model.Operation{
				Kind:             model.OpCreateBinding,
				ConsumerID:       change.ConsumerID,
				SlotID:           change.SlotID,
				TargetProviderID: change.ProviderID,
			}
			op.Risk = risk(nil, &provider, &slot, as, change.ConsumerID)
			ops = append(ops, op)

		case model.ChangeRemoveBinding:
			b, ok := ss.BindingFor(change.ConsumerID, change.SlotID)
			if !ok {
				continue
			}
			ops = append(ops, model.Operation{
				Kind:              model.OpRemoveBinding,
				ConsumerID:        change.ConsumerID,
				SlotID:            change.SlotID,
				CurrentProviderID: b.ProviderID,
				BindingID:         b.ID,
				Risk:              model.RiskLow,
			})

		case model.ChangeSwitchBinding:
			slot, ok := ss.GetSlot(change.SlotID)
			if !ok {
				continue
			}
			target, ok := ss.GetProvider(change.ToID)
			if !ok {
				continue
			}
			var current *model.Provider
			if b, ok := ss.BindingFor(change.ConsumerID, change.SlotID); ok {
				if p, ok := ss.GetProvider(b.ProviderID); ok {
					current = &p
				}
			}
			op := model.Operation{
				Kind:              model.OpSwitchBinding,
				ConsumerID:        change.ConsumerID,
				SlotID:            change.SlotID,
				TargetProviderID:  change.ToID,
				CurrentProviderID: change.FromID,
			}
			op.Risk = risk(current, &target, &slot, as, change.ConsumerID)
			ops = append(ops, op)
		}
	}
	return ops
}

// deriveAggressiveCreates emits CreateBinding ops for (consumer, slot) pairs
// that have no binding yet but do have a compatible, non-fallback provider —
// only reachable when Options.Aggressive is set. For each slot, the candidate
// consumers are the repos named by a provider's RepoID for that slot; other
// repos are not considered.
func deriveAggressiveCreates(ss *store.SlotStore, oracle *compat.Oracle, as *store.AspectStore) []model.Operation {
	var ops []model.Operation
	for _, slot := range ss.ListSlots() {
		providers := ss.ProvidersForSlot(slot.ID)
		consumers := make(map[string]bool)
		for _, p := range providers {
			if p.RepoID != "" {
				consumers[p.RepoID] = true
			}
		}
		for consumerID := range consumers {
			if _, bound := ss.BindingFor(consumerID, slot.ID); bound {
				continue
			}
			var best *model.Provider
			for _, candidate := range providers {
				candidate := candidate
				if candidate.Fallback {
					continue
				}
				result := oracle.Check(&slot, &candidate)
				if !result.Compatible {
					continue
				}
				if best == nil || candidate.Priority > best.Priority {
					best = &candidate
				}
			}
			if best == nil {
				continue
			}
			op := model.Operation{
				Kind:             model.OpCreateBinding,
				ConsumerID:       consumerID,
				SlotID:           slot.ID,
				TargetProviderID: best.ID,
			}
			op.Risk = risk(nil, best, &slot, as, consumerID)
			ops = append(ops, op)
		}
	}
	return ops
}

// risk implements the additive scoring of spec section 4.5.
func risk(current, target *model.Provider, slot *model.Slot, as *store.AspectStore, consumerID string) model.RiskLevel {
	score := 0

	if current != nil && current.Type == model.ProviderLocal && target.Type == model.ProviderExternal {
		score += 2
	}
	if target.Fallback {
		score++
	}
	if slot.IfaceVersion != "" && target.IfaceVersion != "" && slot.IfaceVersion != target.IfaceVersion {
		score++
	}

	endpoints := map[string]bool{consumerID: true, target.ID: true}
	if target.RepoID != "" {
		endpoints[target.RepoID] = true
	}
	for _, ann := range as.ListAnnotations() {
		if ann.Polarity != model.PolarityRisk {
			continue
		}
		if endpoints[ann.Target] {
			score += ann.Weight
		}
	}

	return model.RiskFromScore(score)
}

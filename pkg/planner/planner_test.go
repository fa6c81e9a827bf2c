package planner

import (
	"testing"
	"time"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

type fixture struct {
	gs *store.GraphStore
	ss *store.SlotStore
	as *store.AspectStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	gs, err := store.OpenGraphStore(dir)
	if err != nil {
		t.Fatalf("OpenGraphStore: %v", err)
	}
	ss, err := store.OpenSlotStore(dir)
	if err != nil {
		t.Fatalf("OpenSlotStore: %v", err)
	}
	as, err := store.OpenAspectStore(dir)
	if err != nil {
		t.Fatalf("OpenAspectStore: %v", err)
	}
	return &fixture{gs: gs, ss: ss, as: as}
}

func (f *fixture) repo(t *testing.T, name string) string {
	t.Helper()
	id := ids.RepoID("github", "acme", name)
	f.gs.UpsertRepo(model.Repo{ID: id, Forge: model.ForgeGitHub, Owner: "acme", Name: name, CreatedAt: time.Now().UTC()})
	return id
}

func (f *fixture) slot(t *testing.T, category, name string) string {
	t.Helper()
	id := ids.SlotID(category, name)
	if err := f.ss.CreateSlot(model.Slot{ID: id, Category: category, Name: name, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	return id
}

func (f *fixture) provider(t *testing.T, slotID, name string, priority int, fallback bool) string {
	t.Helper()
	id := ids.ProviderID(slotID, name)
	if err := f.ss.CreateProvider(model.Provider{ID: id, SlotID: slotID, Name: name, Type: model.ProviderLocal, Priority: priority, Fallback: fallback, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	return id
}

func TestDeriveSwitchesToHigherPriorityProvider(t *testing.T) {
	f := newFixture(t)
	consumer := f.repo(t, "app")
	slotID := f.slot(t, "logging", "sink")
	low := f.provider(t, slotID, "stdout", 1, false)
	high := f.provider(t, slotID, "aggregator", 5, false)
	bindingID := ids.BindingID(consumer, slotID)
	if err := f.ss.CreateBinding(model.SlotBinding{ID: bindingID, ConsumerID: consumer, SlotID: slotID, ProviderID: low, Mode: model.BindingManual, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}

	scenarioID := ids.ScenarioID("noop")
	f.gs.UpsertScenario(model.Scenario{ID: scenarioID, Name: "noop", CreatedAt: time.Now().UTC()})

	plan, diff := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{})
	if len(plan.Operations) != 1 {
		t.Fatalf("expected exactly one switch op, got %d", len(plan.Operations))
	}
	op := plan.Operations[0]
	if op.Kind != model.OpSwitchBinding || op.TargetProviderID != high || op.CurrentProviderID != low {
		t.Fatalf("unexpected op: %+v", op)
	}
	if diff.BindingsChanged != 1 {
		t.Fatalf("expected diff.BindingsChanged=1, got %d", diff.BindingsChanged)
	}
}

func TestDeriveSwitchesSkipsFallbackAndIncompatible(t *testing.T) {
	f := newFixture(t)
	consumer := f.repo(t, "app")
	slotID := f.slot(t, "logging", "sink")
	low := f.provider(t, slotID, "stdout", 1, false)
	// Higher priority but marked fallback: must not be chosen as a switch target.
	f.provider(t, slotID, "fallback-sink", 9, true)
	bindingID := ids.BindingID(consumer, slotID)
	if err := f.ss.CreateBinding(model.SlotBinding{ID: bindingID, ConsumerID: consumer, SlotID: slotID, ProviderID: low, Mode: model.BindingManual, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}

	scenarioID := ids.ScenarioID("noop")
	f.gs.UpsertScenario(model.Scenario{ID: scenarioID, Name: "noop", CreatedAt: time.Now().UTC()})

	plan, _ := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{})
	if len(plan.Operations) != 0 {
		t.Fatalf("expected no switch ops when the only higher-priority candidate is a fallback, got %+v", plan.Operations)
	}
}

func TestDeriveFromChangeSetCreate(t *testing.T) {
	f := newFixture(t)
	consumer := f.repo(t, "app")
	slotID := f.slot(t, "logging", "sink")
	provider := f.provider(t, slotID, "aggregator", 5, false)

	scenarioID := ids.ScenarioID("rollout")
	f.gs.UpsertScenario(model.Scenario{ID: scenarioID, Name: "rollout", CreatedAt: time.Now().UTC()})
	f.gs.SetChangeSet(model.ChangeSet{
		ScenarioID: scenarioID,
		Ops: []model.ChangeOp{
			{Kind: model.ChangeCreateBinding, ConsumerID: consumer, SlotID: slotID, ProviderID: provider},
		},
	})

	plan, diff := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{})
	if len(plan.Operations) != 1 || plan.Operations[0].Kind != model.OpCreateBinding {
		t.Fatalf("expected one create-binding op, got %+v", plan.Operations)
	}
	if diff.BindingsCreated != 1 {
		t.Fatalf("expected diff.BindingsCreated=1, got %d", diff.BindingsCreated)
	}
}

func TestDeriveAggressiveOptInOnly(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, "logging", "sink")
	consumerRepo := f.repo(t, "app")
	f.ss.CreateProvider(model.Provider{ID: ids.ProviderID(slotID, "self"), SlotID: slotID, Name: "self", Type: model.ProviderLocal, RepoID: consumerRepo, Priority: 1, CreatedAt: time.Now().UTC()})

	scenarioID := ids.ScenarioID("noop")
	f.gs.UpsertScenario(model.Scenario{ID: scenarioID, Name: "noop", CreatedAt: time.Now().UTC()})

	conservative, _ := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{Aggressive: false})
	if len(conservative.Operations) != 0 {
		t.Fatalf("conservative mode must not emit create ops for unbound pairs, got %+v", conservative.Operations)
	}

	aggressive, _ := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{Aggressive: true})
	if len(aggressive.Operations) != 1 || aggressive.Operations[0].Kind != model.OpCreateBinding {
		t.Fatalf("aggressive mode should emit one create-binding op, got %+v", aggressive.Operations)
	}
}

func TestOverallRiskIsMaxOfOps(t *testing.T) {
	f := newFixture(t)
	consumer := f.repo(t, "app")
	slotID := f.slot(t, "logging", "sink")
	local := f.provider(t, slotID, "stdout", 1, false)
	external := ids.ProviderID(slotID, "remote")
	if err := f.ss.CreateProvider(model.Provider{ID: external, SlotID: slotID, Name: "remote", Type: model.ProviderExternal, Priority: 9, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	bindingID := ids.BindingID(consumer, slotID)
	if err := f.ss.CreateBinding(model.SlotBinding{ID: bindingID, ConsumerID: consumer, SlotID: slotID, ProviderID: local, Mode: model.BindingManual, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}

	scenarioID := ids.ScenarioID("noop")
	f.gs.UpsertScenario(model.Scenario{ID: scenarioID, Name: "noop", CreatedAt: time.Now().UTC()})

	plan, _ := Derive(f.gs, f.ss, f.as, compat.New(), scenarioID, Options{})
	if len(plan.Operations) != 1 {
		t.Fatalf("expected one switch op (local -> external), got %+v", plan.Operations)
	}
	if plan.OverallRisk != plan.Operations[0].Risk {
		t.Fatalf("overall risk %s should equal the single op's risk %s", plan.OverallRisk, plan.Operations[0].Risk)
	}
	if plan.OverallRisk == model.RiskLow {
		t.Fatalf("a local-to-external switch should score above RiskLow, got %s", plan.OverallRisk)
	}
}

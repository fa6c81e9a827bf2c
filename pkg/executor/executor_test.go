package executor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/metrics"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

func newTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return st, dir
}

// seedBinding wires one slot with two compatible providers and an existing
// binding to the lower-priority one, mirroring the switch scenario that
// pkg/planner's deriveSwitches would act on.
func seedBinding(t *testing.T, st *store.Store) (consumerID, slotID, lowID, highID, bindingID string) {
	t.Helper()
	now := time.Now().UTC()

	consumerID = ids.RepoID("github", "acme", "app")
	st.Graph.UpsertRepo(model.Repo{ID: consumerID, Forge: model.ForgeGitHub, Owner: "acme", Name: "app", Visibility: model.VisibilityPublic, CreatedAt: now, UpdatedAt: now})

	slotID = ids.SlotID("logging", "sink")
	if err := st.Slot.CreateSlot(model.Slot{ID: slotID, Category: "logging", Name: "sink", CreatedAt: now}); err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	lowID = ids.ProviderID(slotID, "stdout")
	if err := st.Slot.CreateProvider(model.Provider{ID: lowID, SlotID: slotID, Name: "stdout", Type: model.ProviderLocal, Priority: 1, CreatedAt: now}); err != nil {
		t.Fatalf("CreateProvider low: %v", err)
	}
	highID = ids.ProviderID(slotID, "aggregator")
	if err := st.Slot.CreateProvider(model.Provider{ID: highID, SlotID: slotID, Name: "aggregator", Type: model.ProviderLocal, Priority: 5, CreatedAt: now}); err != nil {
		t.Fatalf("CreateProvider high: %v", err)
	}

	bindingID = ids.BindingID(consumerID, slotID)
	if err := st.Slot.CreateBinding(model.SlotBinding{ID: bindingID, ConsumerID: consumerID, SlotID: slotID, ProviderID: lowID, Mode: model.BindingManual, CreatedBy: "test", CreatedAt: now}); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}
	return
}

func TestApplySwitchBindingSuccess(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, highID, bindingID := seedBinding(t, st)
	oracle := compat.New()

	plan := model.Plan{
		ID:     "plan:sink:20260730000000",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{
				Kind:              model.OpSwitchBinding,
				ConsumerID:        mustConsumer(st),
				SlotID:            slotID,
				CurrentProviderID: lowID,
				TargetProviderID:  highID,
				BindingID:         bindingID,
				Risk:              model.RiskLow,
			},
		},
	}

	entry, err := Apply(dir, st, oracle, plan, "operator", Options{})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if entry.Result != model.ApplySuccess {
		t.Fatalf("expected success, got %s", entry.Result)
	}
	if !entry.HealthCheckRun || !entry.HealthCheckPassed {
		t.Errorf("expected health check to run and pass, got run=%v passed=%v", entry.HealthCheckRun, entry.HealthCheckPassed)
	}

	applied, ok := st.Plan.GetPlan(plan.ID)
	if !ok || applied.Status != model.PlanApplied {
		t.Fatalf("expected plan to be marked applied, got %+v ok=%v", applied, ok)
	}

	b, ok := st.Slot.BindingFor(mustConsumer(st), slotID)
	if !ok || b.ProviderID != highID {
		t.Fatalf("expected binding to point at high-priority provider, got %+v", b)
	}

	entries := st.Audit.EntriesForPlan(plan.ID)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}
}

func TestApplyAutoRollbackOnFailure(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, _, bindingID := seedBinding(t, st)
	oracle := compat.New()

	plan := model.Plan{
		ID:     "plan:sink:20260730000001",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{
				Kind:              model.OpSwitchBinding,
				ConsumerID:        mustConsumer(st),
				SlotID:            slotID,
				CurrentProviderID: lowID,
				TargetProviderID:  "provider:does.not-exist",
				BindingID:         bindingID,
				Risk:              model.RiskLow,
			},
		},
	}

	entry, err := Apply(dir, st, oracle, plan, "operator", Options{})
	if err == nil {
		t.Fatal("expected error from Apply with an unknown target provider")
	}
	if entry.Result != model.ApplyRolledBack {
		t.Fatalf("expected auto-rollback, got %s", entry.Result)
	}
	if !entry.AutoRollbackTriggered {
		t.Error("expected AutoRollbackTriggered to be set")
	}

	b, ok := st.Slot.BindingFor(mustConsumer(st), slotID)
	if !ok || b.ProviderID != lowID {
		t.Fatalf("expected binding restored to original provider, got %+v ok=%v", b, ok)
	}

	p, ok := st.Plan.GetPlan(plan.ID)
	if !ok || p.Status != model.PlanDraft {
		t.Fatalf("expected plan to remain/return to draft, got %+v", p)
	}
}

func TestApplyHaltsWithoutRollback(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, _, bindingID := seedBinding(t, st)
	oracle := compat.New()

	plan := model.Plan{
		ID:     "plan:sink:20260730000002",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{
				Kind:              model.OpSwitchBinding,
				ConsumerID:        mustConsumer(st),
				SlotID:            slotID,
				CurrentProviderID: lowID,
				TargetProviderID:  "provider:does.not-exist",
				BindingID:         bindingID,
				Risk:              model.RiskLow,
			},
		},
	}

	entry, err := Apply(dir, st, oracle, plan, "operator", Options{NoAutoRollback: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if entry.Result != model.ApplyPartialFailure {
		t.Fatalf("expected partial_failure, got %s", entry.Result)
	}
	if entry.AutoRollbackTriggered {
		t.Error("did not expect auto rollback with NoAutoRollback set")
	}

	b, ok := st.Slot.BindingFor(mustConsumer(st), slotID)
	if ok {
		t.Fatalf("expected binding to remain removed after halted switch, got %+v", b)
	}
}

func TestApplyDryRunWritesNoAudit(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, highID, bindingID := seedBinding(t, st)
	oracle := compat.New()

	plan := model.Plan{
		ID:     "plan:sink:20260730000003",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{Kind: model.OpSwitchBinding, ConsumerID: mustConsumer(st), SlotID: slotID, CurrentProviderID: lowID, TargetProviderID: highID, BindingID: bindingID},
		},
	}

	entry, err := Apply(dir, st, oracle, plan, "operator", Options{DryRun: true})
	if err != nil {
		t.Fatalf("dry run should not error: %v", err)
	}
	if entry.ID != "" {
		t.Errorf("expected zero AuditEntry from dry run, got %+v", entry)
	}
	if len(st.Audit.ListEntries()) != 0 {
		t.Error("dry run must not append an audit entry")
	}
	if b, ok := st.Slot.BindingFor(mustConsumer(st), slotID); !ok || b.ProviderID != lowID {
		t.Error("dry run must not mutate the binding")
	}
}

func TestUndoReturnsPlanToDraft(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, highID, bindingID := seedBinding(t, st)
	oracle := compat.New()

	plan := model.Plan{
		ID:     "plan:sink:20260730000004",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{Kind: model.OpSwitchBinding, ConsumerID: mustConsumer(st), SlotID: slotID, CurrentProviderID: lowID, TargetProviderID: highID, BindingID: bindingID},
		},
	}

	if _, err := Apply(dir, st, oracle, plan, "operator", Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	applied, _ := st.Plan.GetPlan(plan.ID)

	entry, err := Undo(dir, st, oracle, applied, "operator")
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if entry.Result != model.ApplyRolledBack {
		t.Fatalf("expected rolled_back, got %s", entry.Result)
	}

	reverted, ok := st.Plan.GetPlan(plan.ID)
	if !ok || reverted.Status != model.PlanDraft {
		t.Fatalf("expected plan back at draft, got %+v", reverted)
	}
	b, ok := st.Slot.BindingFor(mustConsumer(st), slotID)
	if !ok || b.ProviderID != lowID {
		t.Fatalf("expected binding restored to original provider, got %+v ok=%v", b, ok)
	}
}

// TestApplyRecordsMetrics exercises the real metrics wiring (AppliesTotal,
// ApplyDuration via metrics.Timer) through an actual Apply call, replacing
// the generic, store-free timer coverage the teacher's pkg/metrics carried.
func TestApplyRecordsMetrics(t *testing.T) {
	st, dir := newTestStore(t)
	_, slotID, lowID, highID, bindingID := seedBinding(t, st)
	oracle := compat.New()

	before := testutil.ToFloat64(metrics.AppliesTotal.WithLabelValues(string(model.ApplySuccess)))
	beforeObservations := sampleCount(t, metrics.ApplyDuration)

	plan := model.Plan{
		ID:     "plan:sink:20260730000005",
		Status: model.PlanReady,
		Operations: []model.Operation{
			{Kind: model.OpSwitchBinding, ConsumerID: mustConsumer(st), SlotID: slotID, CurrentProviderID: lowID, TargetProviderID: highID, BindingID: bindingID},
		},
	}

	if _, err := Apply(dir, st, oracle, plan, "operator", Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after := testutil.ToFloat64(metrics.AppliesTotal.WithLabelValues(string(model.ApplySuccess)))
	if after != before+1 {
		t.Fatalf("expected AppliesTotal{result=success} to increment by 1, went from %v to %v", before, after)
	}

	afterObservations := sampleCount(t, metrics.ApplyDuration)
	if afterObservations <= beforeObservations {
		t.Fatalf("expected ApplyDuration to record a new observation, count stayed at %d", afterObservations)
	}
}

// sampleCount reads a Histogram's cumulative observation count via its
// protobuf wire form, since prometheus's client API exposes no direct getter.
func sampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestUndoRejectsNonAppliedPlan(t *testing.T) {
	st, dir := newTestStore(t)
	oracle := compat.New()
	plan := model.Plan{ID: "plan:sink:unapplied", Status: model.PlanDraft}

	if _, err := Undo(dir, st, oracle, plan, "operator"); err == nil {
		t.Fatal("expected error undoing a draft plan")
	}
}

// mustConsumer returns the sole repo seeded by seedBinding.
func mustConsumer(st *store.Store) string {
	repos := st.Graph.ListRepos()
	if len(repos) == 0 {
		return ""
	}
	return repos[0].ID
}

package export

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

func newPopulatedStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	now := time.Now().UTC()

	consumer := ids.RepoID("github", "acme", "app")
	provider := ids.RepoID("github", "acme", "lib")
	st.Graph.UpsertRepo(model.Repo{ID: consumer, Forge: model.ForgeGitHub, Owner: "acme", Name: "app", Visibility: model.VisibilityPublic, CreatedAt: now, UpdatedAt: now})
	st.Graph.UpsertRepo(model.Repo{ID: provider, Forge: model.ForgeGitHub, Owner: "acme", Name: "lib", Visibility: model.VisibilityPublic, CreatedAt: now, UpdatedAt: now})

	edge := model.Edge{ID: ids.EdgeID(consumer, provider, "uses", "", ""), From: consumer, To: provider, Rel: model.RelationUses, Channel: model.ChannelAPI, CreatedAt: now}
	if err := st.Graph.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if err := st.Graph.UpsertGroup(model.Group{ID: ids.GroupID("core"), Name: "core", Members: []string{consumer, provider}, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertGroup: %v", err)
	}

	slotID := ids.SlotID("logging", "sink")
	if err := st.Slot.CreateSlot(model.Slot{ID: slotID, Category: "logging", Name: "sink", CreatedAt: now}); err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	providerID := ids.ProviderID(slotID, "stdout")
	if err := st.Slot.CreateProvider(model.Provider{ID: providerID, SlotID: slotID, Name: "stdout", Type: model.ProviderLocal, Priority: 1, CreatedAt: now}); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	if err := st.Slot.CreateBinding(model.SlotBinding{ID: ids.BindingID(consumer, slotID), ConsumerID: consumer, SlotID: slotID, ProviderID: providerID, Mode: model.BindingManual, CreatedBy: "test", CreatedAt: now}); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}

	return st
}

func TestToDOTContainsRepoEdgeGroup(t *testing.T) {
	st := newPopulatedStore(t)
	dot := ToDOT(st, Options{})

	if !strings.HasPrefix(dot, "digraph ecosystem {") {
		t.Error("expected digraph ecosystem header")
	}
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Error("missing rankdir=LR")
	}
	if !strings.Contains(dot, "app\\ngh") {
		t.Error("expected repo label with name and forge code")
	}
	if !strings.Contains(dot, "subgraph cluster_") {
		t.Error("expected a group subgraph")
	}
	if strings.Contains(dot, "shape=diamond") {
		t.Error("did not expect slot layer without Options.IncludeSlots")
	}
}

func TestToDOTIncludesSlotLayer(t *testing.T) {
	st := newPopulatedStore(t)
	dot := ToDOT(st, Options{IncludeSlots: true})

	if !strings.Contains(dot, "shape=diamond") {
		t.Error("expected a slot diamond node")
	}
	if !strings.Contains(dot, "shape=hexagon") {
		t.Error("expected a provider hexagon node")
	}
	if !strings.Contains(dot, "color=darkgreen") {
		t.Error("expected a dark-green binding edge")
	}
	if !strings.Contains(dot, "uses (manual)") {
		t.Error("expected binding edge label uses (<mode>)")
	}
}

func TestToJSONIsPrettyPrintedGraphDocument(t *testing.T) {
	st := newPopulatedStore(t)
	out, err := ToJSON(st)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(out, "\"repos\"") {
		t.Error("expected repos key in JSON export")
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("expected indented (pretty-printed) JSON")
	}
}

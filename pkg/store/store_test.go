package store

import (
	"time"

	"testing"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

func TestOpenSeedsBuiltInAspectsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	aspects := st.Aspect.ListAspects()
	if len(aspects) != len(model.BuiltInAspects) {
		t.Fatalf("expected %d seeded aspects, got %d", len(model.BuiltInAspects), len(aspects))
	}
	for _, a := range aspects {
		if !a.BuiltIn {
			t.Fatalf("seeded aspect %s should be marked built-in", a.ID)
		}
	}
}

func TestSaveAllThenReopenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	now := time.Now().UTC()
	repoID := ids.RepoID("github", "acme", "widgets")
	st.Graph.UpsertRepo(model.Repo{ID: repoID, Forge: model.ForgeGitHub, Owner: "acme", Name: "widgets", Visibility: model.VisibilityPublic, CreatedAt: now, UpdatedAt: now})

	slotID := ids.SlotID("logging", "sink")
	if err := st.Slot.CreateSlot(model.Slot{ID: slotID, Category: "logging", Name: "sink", CreatedAt: now}); err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	st.Aspect.Tag(model.AspectAnnotation{Target: repoID, AspectID: ids.AspectID("Security"), Polarity: model.PolarityRisk, Weight: 2, CreatedAt: now})

	if err := st.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Graph.GetRepo(repoID); !ok {
		t.Fatalf("expected repo %s to survive a save/reopen cycle", repoID)
	}
	if _, ok := reopened.Slot.GetSlot(slotID); !ok {
		t.Fatalf("expected slot %s to survive a save/reopen cycle", slotID)
	}
	anns := reopened.Aspect.AnnotationsFor(repoID)
	if len(anns) != 1 || anns[0].Weight != 2 {
		t.Fatalf("expected one annotation with weight 2, got %+v", anns)
	}
}

func TestMissingDocumentLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	gs, err := OpenGraphStore(dir)
	if err != nil {
		t.Fatalf("OpenGraphStore on empty dir: %v", err)
	}
	if len(gs.ListRepos()) != 0 || len(gs.ListEdges()) != 0 {
		t.Fatalf("expected an empty graph document, got repos=%v edges=%v", gs.ListRepos(), gs.ListEdges())
	}
}

func TestAnnotationUpsertKeepsOnlyMostRecentPerTargetAspect(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	target := ids.RepoID("github", "acme", "widgets")
	aspectID := ids.AspectID("Security")
	st.Aspect.Tag(model.AspectAnnotation{Target: target, AspectID: aspectID, Weight: 1})
	st.Aspect.Tag(model.AspectAnnotation{Target: target, AspectID: aspectID, Weight: 5})

	anns := st.Aspect.AnnotationsFor(target)
	if len(anns) != 1 {
		t.Fatalf("expected exactly one annotation per (target, aspect), got %d", len(anns))
	}
	if anns[0].Weight != 5 {
		t.Fatalf("expected the later Tag call to win, got weight %d", anns[0].Weight)
	}
}

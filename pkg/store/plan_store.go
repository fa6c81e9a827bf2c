package store

import (
	"path/filepath"

	"github.com/hyperpolymath/reposystem/pkg/model"
)

// PlanDocument is the contents of plans.yaml.
type PlanDocument struct {
	Plans []model.Plan     `yaml:"plans,omitempty"`
	Diffs []model.PlanDiff `yaml:"diffs,omitempty"`
}

// PlanStore owns plans.yaml.
type PlanStore struct {
	path string
	doc  PlanDocument
}

// OpenPlanStore loads plans.yaml from dataDir (empty if absent).
func OpenPlanStore(dataDir string) (*PlanStore, error) {
	s := &PlanStore{path: filepath.Join(dataDir, "plans.yaml")}
	if err := loadDocument(s.path, &s.doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the current document atomically.
func (s *PlanStore) Save() error {
	return saveDocument(s.path, &s.doc)
}

// Document returns a copy of the underlying document.
func (s *PlanStore) Document() PlanDocument {
	return s.doc
}

// PutPlan adds plan, or replaces the existing entry with the same id. Per
// I7, callers must not replace a plan whose stored Status is Applied with
// one that changes Operations; the executor enforces that, not this store.
func (s *PlanStore) PutPlan(p model.Plan) {
	for i, existing := range s.doc.Plans {
		if existing.ID == p.ID {
			s.doc.Plans[i] = p
			return
		}
	}
	s.doc.Plans = append(s.doc.Plans, p)
}

// GetPlan returns the plan with id, or false if not found.
func (s *PlanStore) GetPlan(id string) (model.Plan, bool) {
	for _, p := range s.doc.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}

// RemovePlan deletes the plan with id and its diff.
func (s *PlanStore) RemovePlan(id string) bool {
	removed := false
	for i, p := range s.doc.Plans {
		if p.ID == id {
			s.doc.Plans = append(s.doc.Plans[:i], s.doc.Plans[i+1:]...)
			removed = true
			break
		}
	}
	for i, d := range s.doc.Diffs {
		if d.PlanID == id {
			s.doc.Diffs = append(s.doc.Diffs[:i], s.doc.Diffs[i+1:]...)
			break
		}
	}
	return removed
}

// ListPlans returns all plans.
func (s *PlanStore) ListPlans() []model.Plan {
	return append([]model.Plan(nil), s.doc.Plans...)
}

// PutDiff adds diff, or replaces the existing entry for the same plan id.
func (s *PlanStore) PutDiff(d model.PlanDiff) {
	for i, existing := range s.doc.Diffs {
		if existing.PlanID == d.PlanID {
			s.doc.Diffs[i] = d
			return
		}
	}
	s.doc.Diffs = append(s.doc.Diffs, d)
}

// GetDiff returns the diff for planID, or false if not found.
func (s *PlanStore) GetDiff(planID string) (model.PlanDiff, bool) {
	for _, d := range s.doc.Diffs {
		if d.PlanID == planID {
			return d, true
		}
	}
	return model.PlanDiff{}, false
}

package store

import (
	"path/filepath"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

// GraphDocument is the contents of graph.yaml.
type GraphDocument struct {
	Repos      []model.Repo      `yaml:"repos,omitempty" json:"repos,omitempty"`
	Edges      []model.Edge      `yaml:"edges,omitempty" json:"edges,omitempty"`
	Groups     []model.Group     `yaml:"groups,omitempty" json:"groups,omitempty"`
	Scenarios  []model.Scenario  `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	ChangeSets []model.ChangeSet `yaml:"changesets,omitempty" json:"changesets,omitempty"`
}

// GraphStore owns graph.yaml.
type GraphStore struct {
	path string
	doc  GraphDocument
}

// OpenGraphStore loads graph.yaml from dataDir (empty if absent).
func OpenGraphStore(dataDir string) (*GraphStore, error) {
	s := &GraphStore{path: filepath.Join(dataDir, "graph.yaml")}
	if err := loadDocument(s.path, &s.doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the current document atomically.
func (s *GraphStore) Save() error {
	return saveDocument(s.path, &s.doc)
}

// Document returns a copy of the underlying document for export/diffing.
func (s *GraphStore) Document() GraphDocument {
	return s.doc
}

// --- Repos ---

// UpsertRepo adds repo, or replaces the existing entry with the same id
// (idempotent on id, per the graph engine's add_repo contract).
func (s *GraphStore) UpsertRepo(repo model.Repo) {
	for i, r := range s.doc.Repos {
		if r.ID == repo.ID {
			s.doc.Repos[i] = repo
			return
		}
	}
	s.doc.Repos = append(s.doc.Repos, repo)
}

// GetRepo returns the repo with id, or false if not found.
func (s *GraphStore) GetRepo(id string) (model.Repo, bool) {
	for _, r := range s.doc.Repos {
		if r.ID == id {
			return r, true
		}
	}
	return model.Repo{}, false
}

// ListRepos returns all repos.
func (s *GraphStore) ListRepos() []model.Repo {
	return append([]model.Repo(nil), s.doc.Repos...)
}

// --- Edges ---

// AddEdge appends edge, failing if either endpoint is unknown (I1).
// Duplicate ids are a no-op, not an error (idempotent add).
func (s *GraphStore) AddEdge(edge model.Edge) error {
	for _, e := range s.doc.Edges {
		if e.ID == edge.ID {
			return nil
		}
	}
	if _, ok := s.GetRepo(edge.From); !ok {
		return apperr.New(apperr.InvariantViolation, "edge references unknown from-repo "+edge.From)
	}
	if _, ok := s.GetRepo(edge.To); !ok {
		return apperr.New(apperr.InvariantViolation, "edge references unknown to-repo "+edge.To)
	}
	s.doc.Edges = append(s.doc.Edges, edge)
	return nil
}

// RemoveEdge removes the edge with id, returning false if it didn't exist.
func (s *GraphStore) RemoveEdge(id string) bool {
	for i, e := range s.doc.Edges {
		if e.ID == id {
			s.doc.Edges = append(s.doc.Edges[:i], s.doc.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// ListEdges returns all edges.
func (s *GraphStore) ListEdges() []model.Edge {
	return append([]model.Edge(nil), s.doc.Edges...)
}

// EdgesFrom returns edges whose From equals id.
func (s *GraphStore) EdgesFrom(id string) []model.Edge {
	var out []model.Edge
	for _, e := range s.doc.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns edges whose To equals id.
func (s *GraphStore) EdgesTo(id string) []model.Edge {
	var out []model.Edge
	for _, e := range s.doc.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// --- Groups ---

// UpsertGroup adds group, or replaces the existing entry with the same id.
func (s *GraphStore) UpsertGroup(group model.Group) error {
	for _, m := range group.Members {
		if _, ok := s.GetRepo(m); !ok {
			return apperr.New(apperr.InvariantViolation, "group references unknown repo "+m)
		}
	}
	for i, g := range s.doc.Groups {
		if g.ID == group.ID {
			s.doc.Groups[i] = group
			return nil
		}
	}
	s.doc.Groups = append(s.doc.Groups, group)
	return nil
}

// GetGroup returns the group with id, or false if not found.
func (s *GraphStore) GetGroup(id string) (model.Group, bool) {
	for _, g := range s.doc.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// RemoveGroup deletes the group with id.
func (s *GraphStore) RemoveGroup(id string) bool {
	for i, g := range s.doc.Groups {
		if g.ID == id {
			s.doc.Groups = append(s.doc.Groups[:i], s.doc.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// ListGroups returns all groups.
func (s *GraphStore) ListGroups() []model.Group {
	return append([]model.Group(nil), s.doc.Groups...)
}

// ReposInGroup returns the member repo ids of group id.
func (s *GraphStore) ReposInGroup(id string) []string {
	g, ok := s.GetGroup(id)
	if !ok {
		return nil
	}
	return append([]string(nil), g.Members...)
}

// --- Scenarios & ChangeSets ---

// UpsertScenario adds scenario, or replaces the existing entry with the same id.
func (s *GraphStore) UpsertScenario(scn model.Scenario) {
	for i, e := range s.doc.Scenarios {
		if e.ID == scn.ID {
			s.doc.Scenarios[i] = scn
			return
		}
	}
	s.doc.Scenarios = append(s.doc.Scenarios, scn)
}

// GetScenario returns the scenario with id, or false if not found.
func (s *GraphStore) GetScenario(id string) (model.Scenario, bool) {
	for _, e := range s.doc.Scenarios {
		if e.ID == id {
			return e, true
		}
	}
	return model.Scenario{}, false
}

// RemoveScenario deletes the scenario with id, and its changeset.
func (s *GraphStore) RemoveScenario(id string) bool {
	removed := false
	for i, e := range s.doc.Scenarios {
		if e.ID == id {
			s.doc.Scenarios = append(s.doc.Scenarios[:i], s.doc.Scenarios[i+1:]...)
			removed = true
			break
		}
	}
	for i, cs := range s.doc.ChangeSets {
		if cs.ScenarioID == id {
			s.doc.ChangeSets = append(s.doc.ChangeSets[:i], s.doc.ChangeSets[i+1:]...)
			break
		}
	}
	return removed
}

// ListScenarios returns all scenarios.
func (s *GraphStore) ListScenarios() []model.Scenario {
	return append([]model.Scenario(nil), s.doc.Scenarios...)
}

// ChangeSetFor returns the ChangeSet for scenarioID, creating an empty one
// in the in-memory document (not yet saved) if none exists.
func (s *GraphStore) ChangeSetFor(scenarioID string) model.ChangeSet {
	for _, cs := range s.doc.ChangeSets {
		if cs.ScenarioID == scenarioID {
			return cs
		}
	}
	return model.ChangeSet{ScenarioID: scenarioID}
}

// SetChangeSet replaces the ChangeSet for cs.ScenarioID.
func (s *GraphStore) SetChangeSet(cs model.ChangeSet) {
	for i, existing := range s.doc.ChangeSets {
		if existing.ScenarioID == cs.ScenarioID {
			s.doc.ChangeSets[i] = cs
			return
		}
	}
	s.doc.ChangeSets = append(s.doc.ChangeSets, cs)
}

/*
Package graph implements the in-memory directed-graph engine of spec
section 4.3: an adjacency index over the graph store's repos, edges, and
groups, rebuilt from the persisted edge list on every load rather than
persisted itself (spec section 9: "the in-memory graph index exists only as
a performance accelerator").

Grounded on warren's pkg/reconciler, which likewise holds a read-mostly
in-memory view of cluster state and runs validation passes over it; here the
reconciliation loop becomes Validate, a synchronous integrity check instead
of a polling correction loop.
*/
package graph

import (
	"fmt"

	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// Index is an in-memory adjacency view over a GraphStore snapshot.
type Index struct {
	repos    map[string]model.Repo
	outEdges map[string][]model.Edge
	inEdges  map[string][]model.Edge
	groups   map[string]model.Group
}

// Build constructs an Index from the current state of gs. Callers rebuild
// the Index after any mutation to the underlying store (add_repo, add_edge,
// add_group) to keep it consistent, per the maintained invariant in
// spec section 4.3.
func Build(gs *store.GraphStore) *Index {
	idx := &Index{
		repos:    make(map[string]model.Repo),
		outEdges: make(map[string][]model.Edge),
		inEdges:  make(map[string][]model.Edge),
		groups:   make(map[string]model.Group),
	}
	for _, r := range gs.ListRepos() {
		idx.repos[r.ID] = r
	}
	for _, e := range gs.ListEdges() {
		idx.outEdges[e.From] = append(idx.outEdges[e.From], e)
		idx.inEdges[e.To] = append(idx.inEdges[e.To], e)
	}
	for _, g := range gs.ListGroups() {
		idx.groups[g.ID] = g
	}
	return idx
}

// HasRepo reports whether id names a known repo.
func (idx *Index) HasRepo(id string) bool {
	_, ok := idx.repos[id]
	return ok
}

// EdgesFrom returns the edges whose From is id.
func (idx *Index) EdgesFrom(id string) []model.Edge {
	return idx.outEdges[id]
}

// EdgesTo returns the edges whose To is id.
func (idx *Index) EdgesTo(id string) []model.Edge {
	return idx.inEdges[id]
}

// Validate checks referential integrity over the whole snapshot: every
// edge's endpoints resolve (I1) and every group's members resolve (I2).
// Used by the view command to report integrity problems.
func (idx *Index) Validate() []error {
	var errs []error
	for _, edges := range idx.outEdges {
		for _, e := range edges {
			if !idx.HasRepo(e.From) {
				errs = append(errs, fmt.Errorf("edge %s: unknown from-repo %s", e.ID, e.From))
			}
			if !idx.HasRepo(e.To) {
				errs = append(errs, fmt.Errorf("edge %s: unknown to-repo %s", e.ID, e.To))
			}
		}
	}
	for _, g := range idx.groups {
		for _, m := range g.Members {
			if !idx.HasRepo(m) {
				errs = append(errs, fmt.Errorf("group %s: unknown member repo %s", g.ID, m))
			}
		}
	}
	return errs
}

// WeakLinks returns the ids of repos with no inbound edges (nothing in the
// graph depends on them), a read-only query supplementing spec.md per
// original_source/src/commands/weak_links.rs.
func (idx *Index) WeakLinks() []string {
	var out []string
	for id := range idx.repos {
		if len(idx.inEdges[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

/*
Package export renders a Store snapshot to the two read-only formats of
spec section 6: Graphviz DOT and pretty-printed JSON.

Grounded on warren's doc-comment ASCII diagrams (pkg/metrics/doc.go,
pkg/scheduler/doc.go draw cluster topology in prose, not code) for the
general idea of a textual rendering pass over live state; the DOT grammar
itself is a direct implementation of spec section 6's literal production
rules, and JSON export is the graph store's document, pretty-printed.
*/
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperpolymath/reposystem/pkg/model"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// forgeCodes is the two-letter code used in a repo's DOT label, per spec
// section 6's "<name>\n<forge-code>".
var forgeCodes = map[model.Forge]string{
	model.ForgeGitHub:    "gh",
	model.ForgeGitLab:    "gl",
	model.ForgeBitbucket: "bb",
	model.ForgeCodeberg:  "cb",
	model.ForgeSourcehut: "sh",
	model.ForgeLocal:     "lc",
}

// Options controls what ToDOT/ToJSON render beyond the graph itself.
type Options struct {
	// IncludeSlots renders slots (diamonds), providers (hexagons), and
	// bindings (dark-green "uses (<mode>)" edges) alongside the repo graph.
	IncludeSlots bool
}

// ToDOT renders st's graph (and, if opts.IncludeSlots, its slot layer) as a
// Graphviz DOT digraph, per spec section 6's grammar.
func ToDOT(st *store.Store, opts Options) string {
	var b strings.Builder

	b.WriteString("digraph ecosystem {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	repos := st.Graph.ListRepos()
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	for _, r := range repos {
		code := forgeCodes[r.Forge]
		if code == "" {
			code = string(r.Forge)
		}
		fmt.Fprintf(&b, "  %q [label=%q];\n", r.ID, r.Name+"\n"+code)
	}
	b.WriteString("\n")

	edges := st.Graph.ListEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	for _, e := range edges {
		label := string(e.Rel)
		if e.Label != "" {
			label = label + ": " + e.Label
		}
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, label)
	}
	b.WriteString("\n")

	groups := st.Graph.ListGroups()
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	for _, g := range groups {
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", sanitizeID(g.ID))
		fmt.Fprintf(&b, "    label=%q;\n", g.Name)
		b.WriteString("    style=dashed;\n")
		for _, m := range g.Members {
			fmt.Fprintf(&b, "    %q;\n", m)
		}
		b.WriteString("  }\n")
	}

	if opts.IncludeSlots {
		writeSlotLayer(&b, st)
	}

	b.WriteString("}\n")
	return b.String()
}

// writeSlotLayer appends slots, providers, and bindings to b, per spec
// section 6: slots as lightyellow diamonds, providers as lightblue hexagons
// (a distinct fill for fallback providers), bindings as dark-green edges
// labeled "uses (<mode>)".
func writeSlotLayer(b *strings.Builder, st *store.Store) {
	b.WriteString("\n")

	slots := st.Slot.ListSlots()
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	for _, s := range slots {
		fmt.Fprintf(b, "  %q [shape=diamond, style=filled, fillcolor=lightyellow, label=%q];\n", s.ID, s.Category+"."+s.Name)
	}

	providers := st.Slot.ListProviders()
	sort.Slice(providers, func(i, j int) bool { return providers[i].ID < providers[j].ID })
	for _, p := range providers {
		fill := "lightblue"
		if p.Fallback {
			fill = "lightgrey"
		}
		fmt.Fprintf(b, "  %q [shape=hexagon, style=filled, fillcolor=%s, label=%q];\n", p.ID, fill, p.Name)
		fmt.Fprintf(b, "  %q -> %q [style=dotted];\n", p.ID, p.SlotID)
	}

	bindings := st.Slot.ListBindings()
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].ID < bindings[j].ID })
	for _, bnd := range bindings {
		fmt.Fprintf(b, "  %q -> %q [color=darkgreen, fontcolor=darkgreen, label=%q];\n",
			bnd.ConsumerID, bnd.ProviderID, fmt.Sprintf("uses (%s)", bnd.Mode))
	}
}

// ToJSON renders st's graph store document, pretty-printed, per spec
// section 6.
func ToJSON(st *store.Store) (string, error) {
	doc := st.Graph.Document()
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func sanitizeID(id string) string {
	return strings.NewReplacer(":", "_", "/", "_", "-", "_", ".", "_").Replace(id)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/graph"
)

// viewCmd is a read-only terminal dump of the graph, standing in for the
// interactive TUI spec.md §1 places out of core scope.
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print a read-only text view of the repo graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}

		idx := graph.Build(st.Graph)
		if errs := idx.Validate(); len(errs) > 0 {
			fmt.Println("invariant violations:")
			for _, e := range errs {
				fmt.Printf("  - %v\n", e)
			}
			fmt.Println()
		}

		repos := st.Graph.ListRepos()
		fmt.Printf("repos (%d):\n", len(repos))
		for _, r := range repos {
			fmt.Printf("  %s  %s/%s  %s  %s\n", r.ID, r.Forge, r.Owner, r.Name, r.Visibility)
			for _, e := range st.Graph.EdgesFrom(r.ID) {
				fmt.Printf("    -%s-> %s  (%s)\n", e.Rel, e.To, e.Channel)
			}
		}

		groups := st.Graph.ListGroups()
		if len(groups) > 0 {
			fmt.Printf("\ngroups (%d):\n", len(groups))
			for _, g := range groups {
				fmt.Printf("  %s  %s  members=%v\n", g.ID, g.Name, g.Members)
			}
		}

		if weak := idx.WeakLinks(); len(weak) > 0 {
			fmt.Printf("\nweak links (no inbound edges): %v\n", weak)
		}

		return nil
	},
}

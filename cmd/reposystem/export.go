package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/export"
	"github.com/hyperpolymath/reposystem/pkg/graph"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the repo graph as DOT or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		includeSlots, _ := cmd.Flags().GetBool("slots")
		weakLinks, _ := cmd.Flags().GetBool("weak-links")

		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}

		if weakLinks {
			idx := graph.Build(st.Graph)
			for _, id := range idx.WeakLinks() {
				repo, ok := st.Graph.GetRepo(id)
				if !ok {
					fmt.Println(id)
					continue
				}
				fmt.Printf("%s  %s\n", repo.ID, repo.Name)
			}
			return nil
		}

		var rendered string
		switch format {
		case "dot":
			rendered = export.ToDOT(st, export.Options{IncludeSlots: includeSlots})
		case "json":
			rendered, err = export.ToJSON(st)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q, expected dot or json", format)
		}

		if output == "" {
			fmt.Println(rendered)
			return nil
		}
		return os.WriteFile(output, []byte(rendered+"\n"), 0o644)
	},
}

func init() {
	exportCmd.Flags().String("format", "dot", "dot or json")
	exportCmd.Flags().String("output", "", "write to this file instead of stdout")
	exportCmd.Flags().Bool("slots", false, "include the slot/provider/binding layer in DOT output")
	exportCmd.Flags().Bool("weak-links", false, "list repos with no inbound dependency edges instead of rendering")
}

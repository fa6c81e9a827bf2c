package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Manage dependency edges between repos",
}

var edgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an edge between two repos",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		rel, _ := cmd.Flags().GetString("rel")
		channel, _ := cmd.Flags().GetString("channel")
		label, _ := cmd.Flags().GetString("label")
		evidencePath, _ := cmd.Flags().GetString("evidence")

		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()

		edge := model.Edge{
			ID:        ids.EdgeID(from, to, rel, channel, label),
			From:      from,
			To:        to,
			Rel:       model.RelationType(rel),
			Channel:   model.Channel(channel),
			Label:     label,
			CreatedAt: time.Now().UTC(),
		}
		if evidencePath != "" {
			edge.Evidence = &model.Evidence{Path: evidencePath, Confidence: 1.0}
		}

		if err := st.Graph.AddEdge(edge); err != nil {
			return err
		}
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(edge.ID)
		return nil
	},
}

var edgeRemoveCmd = &cobra.Command{
	Use:   "remove <edge-id>",
	Short: "Remove an edge by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Graph.RemoveEdge(args[0]) {
			return fmt.Errorf("edge not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

var edgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, e := range st.Graph.ListEdges() {
			fmt.Printf("%s  %s -> %s  rel=%s channel=%s label=%q\n", e.ID, e.From, e.To, e.Rel, e.Channel, e.Label)
		}
		return nil
	},
}

func init() {
	edgeAddCmd.Flags().String("from", "", "source repo id")
	edgeAddCmd.Flags().String("to", "", "target repo id")
	edgeAddCmd.Flags().String("rel", "", "relation type (uses, provides, extends, mirrors, replaces)")
	edgeAddCmd.Flags().String("channel", "", "channel (api, artifact, config, runtime, human, unknown)")
	edgeAddCmd.Flags().String("label", "", "human-readable label")
	edgeAddCmd.Flags().String("evidence", "", "path backing this edge's evidence")

	edgeCmd.AddCommand(edgeAddCmd, edgeRemoveCmd, edgeListCmd)
}

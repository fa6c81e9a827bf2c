package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage named branches of desired state",
}

var scenarioCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		base, _ := cmd.Flags().GetString("base")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		now := time.Now().UTC()
		scn := model.Scenario{ID: ids.ScenarioID(args[0]), Name: args[0], Base: base, CreatedAt: now, UpdatedAt: now}
		st.Graph.UpsertScenario(scn)
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(scn.ID)
		return nil
	},
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Graph.RemoveScenario(ids.ScenarioID(args[0])) {
			return fmt.Errorf("scenario not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, s := range st.Graph.ListScenarios() {
			fmt.Printf("%s  %s  base=%s\n", s.ID, s.Name, s.Base)
		}
		return nil
	},
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a scenario's changeset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		id := ids.ScenarioID(args[0])
		scn, ok := st.Graph.GetScenario(id)
		if !ok {
			return fmt.Errorf("scenario not found: %s", args[0])
		}
		fmt.Printf("%s  %s  base=%s\n", scn.ID, scn.Name, scn.Base)
		cs := st.Graph.ChangeSetFor(id)
		for _, op := range cs.Ops {
			fmt.Printf("  %s consumer=%s slot=%s provider=%s from=%s to=%s\n", op.Kind, op.ConsumerID, op.SlotID, op.ProviderID, op.FromID, op.ToID)
		}
		return nil
	},
}

var scenarioCompareCmd = &cobra.Command{
	Use:   "compare <name-a> <name-b>",
	Short: "Diff two scenarios' changesets",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		a := st.Graph.ChangeSetFor(ids.ScenarioID(args[0]))
		b := st.Graph.ChangeSetFor(ids.ScenarioID(args[1]))

		key := func(op model.ChangeOp) string {
			return fmt.Sprintf("%s|%s|%s|%s|%s|%s", op.Kind, op.ConsumerID, op.SlotID, op.ProviderID, op.FromID, op.ToID)
		}
		inB := make(map[string]bool, len(b.Ops))
		for _, op := range b.Ops {
			inB[key(op)] = true
		}
		inA := make(map[string]bool, len(a.Ops))
		for _, op := range a.Ops {
			inA[key(op)] = true
		}

		fmt.Printf("only in %s:\n", args[0])
		for _, op := range a.Ops {
			if !inB[key(op)] {
				fmt.Printf("  %s consumer=%s slot=%s\n", op.Kind, op.ConsumerID, op.SlotID)
			}
		}
		fmt.Printf("only in %s:\n", args[1])
		for _, op := range b.Ops {
			if !inA[key(op)] {
				fmt.Printf("  %s consumer=%s slot=%s\n", op.Kind, op.ConsumerID, op.SlotID)
			}
		}
		return nil
	},
}

func init() {
	scenarioCreateCmd.Flags().String("base", "", "base scenario id this branches from")
	scenarioCmd.AddCommand(scenarioCreateCmd, scenarioDeleteCmd, scenarioListCmd, scenarioShowCmd, scenarioCompareCmd)
}

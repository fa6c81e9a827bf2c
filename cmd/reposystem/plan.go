package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/metrics"
	"github.com/hyperpolymath/reposystem/pkg/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Derive and inspect plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create <scenario-name>",
	Short: "Derive a plan from a scenario's changeset and current bindings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		aggressive, _ := cmd.Flags().GetBool("aggressive")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()

		scenarioID := ids.ScenarioID(args[0])
		if _, ok := st.Graph.GetScenario(scenarioID); !ok {
			return fmt.Errorf("scenario not found: %s", args[0])
		}

		plan, diff := planner.Derive(st.Graph, st.Slot, st.Aspect, compat.New(), scenarioID, planner.Options{Aggressive: aggressive})
		st.Plan.PutPlan(plan)
		st.Plan.PutDiff(diff)
		if err := st.SaveAll(); err != nil {
			return err
		}
		metrics.PlansDerivedTotal.Inc()

		fmt.Printf("%s  ops=%d overall_risk=%s\n", plan.ID, len(plan.Operations), plan.OverallRisk)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, p := range st.Plan.ListPlans() {
			fmt.Printf("%s  scenario=%s status=%s ops=%d risk=%s\n", p.ID, p.ScenarioID, p.Status, len(p.Operations), p.OverallRisk)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan's operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		p, ok := st.Plan.GetPlan(args[0])
		if !ok {
			return fmt.Errorf("plan not found: %s", args[0])
		}
		fmt.Printf("%s  scenario=%s status=%s overall_risk=%s\n", p.ID, p.ScenarioID, p.Status, p.OverallRisk)
		for i, op := range p.Operations {
			fmt.Printf("  [%d] %s consumer=%s slot=%s %s -> %s risk=%s\n", i, op.Kind, op.ConsumerID, op.SlotID, op.CurrentProviderID, op.TargetProviderID, op.Risk)
		}
		return nil
	},
}

var planDiffCmd = &cobra.Command{
	Use:   "diff <plan-id>",
	Short: "Show a plan's summarized diff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		d, ok := st.Plan.GetDiff(args[0])
		if !ok {
			return fmt.Errorf("no diff found for plan: %s", args[0])
		}
		fmt.Printf("bindings changed=%d created=%d removed=%d files=%d\n", d.BindingsChanged, d.BindingsCreated, d.BindingsRemoved, d.FilesAffected)
		for _, fd := range d.FileDiffs {
			fmt.Printf("  %s: %s\n", fd.Path, fd.Change)
		}
		return nil
	},
}

var planRollbackCmd = &cobra.Command{
	Use:   "rollback <plan-id>",
	Short: "Undo an applied plan (alias for apply undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUndo(cmd, args[0])
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a plan and its diff, whatever its status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Plan.RemovePlan(args[0]) {
			return fmt.Errorf("plan not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

func init() {
	planCreateCmd.Flags().Bool("aggressive", false, "also emit CreateBinding ops for unbound (consumer, slot) pairs with a compatible provider, where the consumer repo owns one of the slot's providers")
	planCmd.AddCommand(planCreateCmd, planListCmd, planShowCmd, planDiffCmd, planRollbackCmd, planDeleteCmd)
}

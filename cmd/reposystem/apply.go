package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/config"
	"github.com/hyperpolymath/reposystem/pkg/executor"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute, undo, or inspect the status of a plan",
}

var applyApplyCmd = &cobra.Command{
	Use:   "apply <plan-id>",
	Short: "Apply a plan's operations transactionally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		autoRollback, _ := cmd.Flags().GetBool("auto-rollback")
		skipHealthCheck, _ := cmd.Flags().GetBool("skip-health-check")

		st, dir, err := openStore(dataDir)
		if err != nil {
			return err
		}

		plan, ok := st.Plan.GetPlan(args[0])
		if !ok {
			return fmt.Errorf("plan not found: %s", args[0])
		}

		if dryRun {
			// §4.6: dry run prints the ordered operations and touches no
			// store; it never calls executor.Apply.
			fmt.Printf("%s  scenario=%s overall_risk=%s (dry run, nothing executed)\n", plan.ID, plan.ScenarioID, plan.OverallRisk)
			for i, op := range plan.Operations {
				fmt.Printf("  [%d] %s consumer=%s slot=%s %s -> %s risk=%s\n", i, op.Kind, op.ConsumerID, op.SlotID, op.CurrentProviderID, op.TargetProviderID, op.Risk)
			}
			return nil
		}

		// --auto-rollback defaults to true; apply's halt-and-report path is
		// reached only with an explicit --auto-rollback=false.
		opts := executor.Options{
			NoAutoRollback:  !autoRollback,
			SkipHealthCheck: skipHealthCheck,
		}
		entry, err := executor.Apply(dir, st, compat.New(), plan, config.Operator(), opts)

		fmt.Printf("result=%s audit=%s health_check_run=%v health_check_passed=%v\n", entry.Result, entry.ID, entry.HealthCheckRun, entry.HealthCheckPassed)
		for _, note := range entry.Notes {
			fmt.Printf("  note: %s\n", note)
		}
		return err
	},
}

var applyUndoCmd = &cobra.Command{
	Use:   "undo <plan-id>",
	Short: "Undo a previously applied plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUndo(cmd, args[0])
	},
}

func runUndo(cmd *cobra.Command, planID string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	st, dir, err := openStore(dataDir)
	if err != nil {
		return err
	}
	plan, ok := st.Plan.GetPlan(planID)
	if !ok {
		return fmt.Errorf("plan not found: %s", planID)
	}
	entry, err := executor.Undo(dir, st, compat.New(), plan, config.Operator())
	if err != nil {
		return err
	}
	fmt.Printf("result=%s audit=%s\n", entry.Result, entry.ID)
	return nil
}

var applyStatusCmd = &cobra.Command{
	Use:   "status <plan-id>",
	Short: "Show a plan's status and audit history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		plan, ok := st.Plan.GetPlan(args[0])
		if !ok {
			return fmt.Errorf("plan not found: %s", args[0])
		}
		fmt.Printf("%s  status=%s overall_risk=%s\n", plan.ID, plan.Status, plan.OverallRisk)
		for _, e := range st.Audit.EntriesForPlan(plan.ID) {
			fmt.Printf("  %s  result=%s started=%s finished=%s rollback=%v health_ok=%v\n",
				e.ID, e.Result, e.StartedAt.Format(time.RFC3339), e.FinishedAt.Format(time.RFC3339), e.AutoRollbackTriggered, e.HealthCheckPassed)
		}
		return nil
	},
}

func init() {
	applyApplyCmd.Flags().Bool("dry-run", false, "print the plan's ordered operations without executing or writing audit")
	applyApplyCmd.Flags().Bool("auto-rollback", true, "roll back executed operations automatically on failure")
	applyApplyCmd.Flags().Bool("skip-health-check", false, "skip the post-apply health check on success")

	applyCmd.AddCommand(applyApplyCmd, applyUndoCmd, applyStatusCmd)
}

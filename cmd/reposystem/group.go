package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage named groups of repos",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name> [repos...]",
	Short: "Create or replace a group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		now := time.Now().UTC()
		g := model.Group{ID: ids.GroupID(args[0]), Name: args[0], Members: args[1:], CreatedAt: now, UpdatedAt: now}
		if existing, ok := st.Graph.GetGroup(g.ID); ok {
			g.CreatedAt = existing.CreatedAt
		}
		if err := st.Graph.UpsertGroup(g); err != nil {
			return err
		}
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(g.ID)
		return nil
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name> [repos...]",
	Short: "Add repos to an existing group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		id := ids.GroupID(args[0])
		g, ok := st.Graph.GetGroup(id)
		if !ok {
			return fmt.Errorf("group not found: %s", args[0])
		}
		members := make(map[string]bool, len(g.Members))
		for _, m := range g.Members {
			members[m] = true
		}
		for _, m := range args[1:] {
			if !members[m] {
				g.Members = append(g.Members, m)
				members[m] = true
			}
		}
		g.UpdatedAt = time.Now().UTC()
		if err := st.Graph.UpsertGroup(g); err != nil {
			return err
		}
		return st.SaveAll()
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove <name> [repos...]",
	Short: "Remove repos from an existing group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		id := ids.GroupID(args[0])
		g, ok := st.Graph.GetGroup(id)
		if !ok {
			return fmt.Errorf("group not found: %s", args[0])
		}
		toRemove := make(map[string]bool, len(args)-1)
		for _, m := range args[1:] {
			toRemove[m] = true
		}
		kept := g.Members[:0]
		for _, m := range g.Members {
			if !toRemove[m] {
				kept = append(kept, m)
			}
		}
		g.Members = kept
		g.UpdatedAt = time.Now().UTC()
		if err := st.Graph.UpsertGroup(g); err != nil {
			return err
		}
		return st.SaveAll()
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Graph.RemoveGroup(ids.GroupID(args[0])) {
			return fmt.Errorf("group not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, g := range st.Graph.ListGroups() {
			fmt.Printf("%s  %s  members=%d\n", g.ID, g.Name, len(g.Members))
		}
		return nil
	},
}

var groupShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a group's members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		g, ok := st.Graph.GetGroup(ids.GroupID(args[0]))
		if !ok {
			return fmt.Errorf("group not found: %s", args[0])
		}
		fmt.Printf("%s  %s\n", g.ID, g.Name)
		for _, m := range g.Members {
			fmt.Printf("  - %s\n", m)
		}
		return nil
	},
}

func init() {
	groupCmd.AddCommand(groupCreateCmd, groupAddCmd, groupRemoveCmd, groupDeleteCmd, groupListCmd, groupShowCmd)
}

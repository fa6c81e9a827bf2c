package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Manage swappable capability slots",
}

var slotCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		category, _ := cmd.Flags().GetString("category")
		ifaceVersion, _ := cmd.Flags().GetString("iface-version")
		capabilities, _ := cmd.Flags().GetString("capabilities")
		description, _ := cmd.Flags().GetString("description")

		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		slot := model.Slot{
			ID:                   ids.SlotID(category, args[0]),
			Category:             category,
			Name:                 args[0],
			IfaceVersion:         ifaceVersion,
			RequiredCapabilities: splitNonEmpty(capabilities),
			Description:          description,
			CreatedAt:            time.Now().UTC(),
		}
		if err := st.Slot.CreateSlot(slot); err != nil {
			return err
		}
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(slot.ID)
		return nil
	},
}

var slotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Slot.RemoveSlot(args[0]) {
			return fmt.Errorf("slot not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

var slotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, s := range st.Slot.ListSlots() {
			fmt.Printf("%s  %s.%s  iface=%s caps=%v\n", s.ID, s.Category, s.Name, s.IfaceVersion, s.RequiredCapabilities)
		}
		return nil
	},
}

var slotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a slot and its providers/bindings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		slot, ok := st.Slot.GetSlot(args[0])
		if !ok {
			return fmt.Errorf("slot not found: %s", args[0])
		}
		fmt.Printf("%s  %s.%s  iface=%s caps=%v\n", slot.ID, slot.Category, slot.Name, slot.IfaceVersion, slot.RequiredCapabilities)
		fmt.Println("providers:")
		for _, p := range st.Slot.ProvidersForSlot(slot.ID) {
			fmt.Printf("  %s  priority=%d fallback=%v\n", p.ID, p.Priority, p.Fallback)
		}
		fmt.Println("bindings:")
		for _, b := range st.Slot.BindingsForSlot(slot.ID) {
			fmt.Printf("  consumer=%s -> provider=%s mode=%s\n", b.ConsumerID, b.ProviderID, b.Mode)
		}
		return nil
	},
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	slotCreateCmd.Flags().String("category", "", "slot category")
	slotCreateCmd.Flags().String("iface-version", "", "required interface version")
	slotCreateCmd.Flags().String("capabilities", "", "comma-separated required capabilities")
	slotCreateCmd.Flags().String("description", "", "human-readable description")

	slotCmd.AddCommand(slotCreateCmd, slotDeleteCmd, slotListCmd, slotShowCmd)
}

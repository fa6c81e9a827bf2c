package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/compat"
	"github.com/hyperpolymath/reposystem/pkg/config"
	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var bindingCmd = &cobra.Command{
	Use:   "binding",
	Short: "Manage direct (consumer, slot) -> provider bindings",
}

var bindingBindCmd = &cobra.Command{
	Use:   "bind",
	Short: "Bind a consumer's slot to a provider, if compatible",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		consumerID, _ := cmd.Flags().GetString("consumer")
		slotID, _ := cmd.Flags().GetString("slot")
		providerID, _ := cmd.Flags().GetString("provider")

		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()

		slot, ok := st.Slot.GetSlot(slotID)
		if !ok {
			return fmt.Errorf("slot not found: %s", slotID)
		}
		provider, ok := st.Slot.GetProvider(providerID)
		if !ok {
			return fmt.Errorf("provider not found: %s", providerID)
		}
		result := compat.New().Check(&slot, &provider)
		if !result.Compatible {
			return fmt.Errorf("incompatible: %s", result.Reason)
		}

		b := model.SlotBinding{
			ID:         ids.BindingID(consumerID, slotID),
			ConsumerID: consumerID,
			SlotID:     slotID,
			ProviderID: providerID,
			Mode:       model.BindingManual,
			CreatedBy:  config.Operator(),
			CreatedAt:  time.Now().UTC(),
		}
		if err := st.Slot.CreateBinding(b); err != nil {
			return err
		}
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(b.ID)
		return nil
	},
}

var bindingUnbindCmd = &cobra.Command{
	Use:   "unbind",
	Short: "Remove a binding",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		consumerID, _ := cmd.Flags().GetString("consumer")
		slotID, _ := cmd.Flags().GetString("slot")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Slot.RemoveBindingFor(consumerID, slotID) {
			return fmt.Errorf("no binding for consumer %s slot %s", consumerID, slotID)
		}
		return st.SaveAll()
	},
}

var bindingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, b := range st.Slot.ListBindings() {
			fmt.Printf("%s  consumer=%s slot=%s provider=%s mode=%s\n", b.ID, b.ConsumerID, b.SlotID, ids.ShortProvider(b.ProviderID), b.Mode)
		}
		return nil
	},
}

var bindingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the binding for a (consumer, slot) pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		consumerID, _ := cmd.Flags().GetString("consumer")
		slotID, _ := cmd.Flags().GetString("slot")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		b, ok := st.Slot.BindingFor(consumerID, slotID)
		if !ok {
			return fmt.Errorf("no binding for consumer %s slot %s", consumerID, slotID)
		}
		fmt.Printf("%s  consumer=%s slot=%s provider=%s mode=%s created_by=%s\n", b.ID, b.ConsumerID, b.SlotID, ids.ShortProvider(b.ProviderID), b.Mode, b.CreatedBy)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{bindingBindCmd, bindingUnbindCmd, bindingShowCmd} {
		c.Flags().String("consumer", "", "consumer repo id")
		c.Flags().String("slot", "", "slot id")
	}
	bindingBindCmd.Flags().String("provider", "", "provider id")

	bindingCmd.AddCommand(bindingBindCmd, bindingUnbindCmd, bindingListCmd, bindingShowCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage implementations that can satisfy a slot",
}

var providerCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a provider for a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		slotID, _ := cmd.Flags().GetString("slot")
		providerType, _ := cmd.Flags().GetString("provider-type")
		repoID, _ := cmd.Flags().GetString("repo")
		uri, _ := cmd.Flags().GetString("uri")
		ifaceVersion, _ := cmd.Flags().GetString("iface-version")
		capabilities, _ := cmd.Flags().GetString("capabilities")
		priority, _ := cmd.Flags().GetInt("priority")
		fallback, _ := cmd.Flags().GetBool("fallback")

		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		p := model.Provider{
			ID:           ids.ProviderID(slotID, args[0]),
			SlotID:       slotID,
			Name:         args[0],
			Type:         model.ProviderType(providerType),
			RepoID:       repoID,
			URI:          uri,
			IfaceVersion: ifaceVersion,
			Capabilities: splitNonEmpty(capabilities),
			Priority:     priority,
			Fallback:     fallback,
			CreatedAt:    time.Now().UTC(),
		}
		if err := st.Slot.CreateProvider(p); err != nil {
			return err
		}
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	},
}

var providerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		if !st.Slot.RemoveProvider(args[0]) {
			return fmt.Errorf("provider not found: %s", args[0])
		}
		return st.SaveAll()
	},
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		slotID, _ := cmd.Flags().GetString("slot")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		providers := st.Slot.ListProviders()
		if slotID != "" {
			providers = st.Slot.ProvidersForSlot(slotID)
		}
		for _, p := range providers {
			fmt.Printf("%s  slot=%s type=%s priority=%d fallback=%v\n", p.ID, p.SlotID, p.Type, p.Priority, p.Fallback)
		}
		return nil
	},
}

var providerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		p, ok := st.Slot.GetProvider(args[0])
		if !ok {
			return fmt.Errorf("provider not found: %s", args[0])
		}
		fmt.Printf("%s  %s  slot=%s type=%s repo=%s uri=%s iface=%s caps=%v priority=%d fallback=%v\n",
			p.ID, p.Name, p.SlotID, p.Type, p.RepoID, p.URI, p.IfaceVersion, p.Capabilities, p.Priority, p.Fallback)
		return nil
	},
}

func init() {
	providerCreateCmd.Flags().String("slot", "", "owning slot id")
	providerCreateCmd.Flags().String("provider-type", string(model.ProviderLocal), "local or external")
	providerCreateCmd.Flags().String("repo", "", "repo id this provider belongs to, if local")
	providerCreateCmd.Flags().String("uri", "", "endpoint or reference URI, if external")
	providerCreateCmd.Flags().String("iface-version", "", "interface version offered")
	providerCreateCmd.Flags().String("capabilities", "", "comma-separated capabilities offered")
	providerCreateCmd.Flags().Int("priority", 0, "selection priority, higher wins")
	providerCreateCmd.Flags().Bool("fallback", false, "mark as a fallback provider")
	providerListCmd.Flags().String("slot", "", "restrict to providers of this slot")

	providerCmd.AddCommand(providerCreateCmd, providerDeleteCmd, providerListCmd, providerShowCmd)
}

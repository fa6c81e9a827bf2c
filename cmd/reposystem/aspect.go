package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

var aspectCmd = &cobra.Command{
	Use:   "aspect",
	Short: "Annotate repos and edges with qualitative aspects",
}

var aspectTagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag a target (repo or edge id) with an aspect",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		target, _ := cmd.Flags().GetString("target")
		aspect, _ := cmd.Flags().GetString("aspect")
		weight, _ := cmd.Flags().GetInt("weight")
		polarity, _ := cmd.Flags().GetString("polarity")
		reason, _ := cmd.Flags().GetString("reason")
		evidencePath, _ := cmd.Flags().GetString("evidence")

		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()

		ann := model.AspectAnnotation{
			Target:   target,
			AspectID: resolveAspectID(st.Aspect.ListAspects(), aspect),
			Weight:   weight,
			Polarity: model.Polarity(polarity),
			Reason:   reason,
			Mode:     "manual",
		}
		if evidencePath != "" {
			ann.Evidence = &model.Evidence{Path: evidencePath, Confidence: 1.0}
		}

		st.Aspect.Tag(ann)
		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Println(ann.ID)
		return nil
	},
}

var aspectRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove an aspect annotation from a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		target, _ := cmd.Flags().GetString("target")
		aspect, _ := cmd.Flags().GetString("aspect")
		st, _, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()
		aspectID := resolveAspectID(st.Aspect.ListAspects(), aspect)
		if !st.Aspect.RemoveAnnotation(target, aspectID) {
			return fmt.Errorf("no annotation found for target %s aspect %s", target, aspect)
		}
		return st.SaveAll()
	},
}

var aspectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all aspects",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, a := range st.Aspect.ListAspects() {
			builtin := ""
			if a.BuiltIn {
				builtin = " (built-in)"
			}
			fmt.Printf("%s  %s%s\n", a.ID, a.Name, builtin)
		}
		return nil
	},
}

var aspectShowCmd = &cobra.Command{
	Use:   "show <target>",
	Short: "Show all annotations on a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		for _, a := range st.Aspect.AnnotationsFor(args[0]) {
			fmt.Printf("%s  aspect=%s weight=%d polarity=%s reason=%q\n", a.ID, a.AspectID, a.Weight, a.Polarity, a.Reason)
		}
		return nil
	},
}

var aspectFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter annotations by aspect and/or polarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		aspect, _ := cmd.Flags().GetString("aspect")
		polarity, _ := cmd.Flags().GetString("polarity")
		st, _, err := openStore(dataDir)
		if err != nil {
			return err
		}
		aspectID := ""
		if aspect != "" {
			aspectID = resolveAspectID(st.Aspect.ListAspects(), aspect)
		}
		for _, a := range st.Aspect.ListAnnotations() {
			if aspectID != "" && a.AspectID != aspectID {
				continue
			}
			if polarity != "" && string(a.Polarity) != polarity {
				continue
			}
			fmt.Printf("%s  target=%s aspect=%s weight=%d polarity=%s\n", a.ID, a.Target, a.AspectID, a.Weight, a.Polarity)
		}
		return nil
	},
}

// resolveAspectID accepts either an aspect id or a bare aspect name and
// returns the matching id, falling back to ids.AspectID(name) if no aspect
// with that name is registered yet.
func resolveAspectID(aspects []model.Aspect, nameOrID string) string {
	for _, a := range aspects {
		if a.ID == nameOrID || a.Name == nameOrID {
			return a.ID
		}
	}
	if strings.HasPrefix(nameOrID, "aspect:") {
		return nameOrID
	}
	return ids.AspectID(nameOrID)
}

func init() {
	for _, c := range []*cobra.Command{aspectTagCmd, aspectRemoveCmd, aspectFilterCmd} {
		c.Flags().String("target", "", "target repo or edge id")
		c.Flags().String("aspect", "", "aspect id or name")
	}
	aspectTagCmd.Flags().Int("weight", 0, "weight 0-3")
	aspectTagCmd.Flags().String("polarity", string(model.PolarityNeutral), "risk, strength, or neutral")
	aspectTagCmd.Flags().String("reason", "", "free-text justification")
	aspectTagCmd.Flags().String("evidence", "", "path backing this annotation's evidence")
	aspectFilterCmd.Flags().String("polarity", "", "filter by polarity")

	aspectCmd.AddCommand(aspectTagCmd, aspectRemoveCmd, aspectListCmd, aspectShowCmd, aspectFilterCmd)
}

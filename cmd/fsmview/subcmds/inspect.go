package subcmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "info <description>",
		Short: "Show description information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			desc, d, err := args.loadDiagram(posArgs[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, desc.String())
			fmt.Fprintf(out, "  Connectors: %d\n", len(d.Connectors))
			for _, s := range desc.States {
				label := s.Label
				if label == "" {
					label = "-"
				}
				fmt.Fprintf(out, "    %4d  (%g, %g)  %s\n", s.ID, s.X, s.Y, label)
			}
			return nil
		},
	}
}

func newValidateCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <description>",
		Short: "Validate a description and its layout",
		Long: `validate checks that the description parses, that its transitions refer to
known states and that no two states share a center.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			desc, _, err := args.loadDiagram(posArgs[0])
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid with %d states, %d transitions\n",
				posArgs[0], len(desc.States), desc.TransitionCount())
			return nil
		},
	}
}

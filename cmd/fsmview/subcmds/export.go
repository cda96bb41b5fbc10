package subcmds

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fsmview/pkg/fsmfile"
)

func newDotCommand(args *inArgs) *cobra.Command {
	var output, dotTitle string

	cmd := &cobra.Command{
		Use:     "dot <description>",
		Short:   "Generate Graphviz DOT output",
		Long:    `dot writes the diagram as a Graphviz digraph with pinned node positions.`,
		Example: `  fsmview dot door.json | neato -n -Tpng -o door.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			desc, err := fsmfile.Load(posArgs[0])
			if err != nil {
				return err
			}
			dot := fsmfile.GenerateDOT(desc, dotTitle)

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}
			if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			args.log.Info("wrote DOT", "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, outputFlag, "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&dotTitle, titleFlag, "t", "", "graph title (default the description's name)")

	return cmd
}

func newConvertCommand(args *inArgs) *cobra.Command {
	var output string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a description between JSON and YAML",
		Long:  `convert rewrites a description in the format implied by the output extension.`,
		Example: `  fsmview convert door.json -o door.yaml
  fsmview convert door.yaml -o door.json --pretty=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, posArgs []string) error {
			desc, err := fsmfile.Load(posArgs[0])
			if err != nil {
				return err
			}
			format, err := fsmfile.FormatFromPath(output)
			if err != nil {
				return err
			}

			var data []byte
			if format == fsmfile.FormatJSON {
				data, err = fsmfile.ToJSON(desc, pretty)
			} else {
				data, err = fsmfile.Marshal(desc, format)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			args.log.Info("converted", "input", posArgs[0], "output", output, "format", format)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, outputFlag, "o", "", "output file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&pretty, prettyFlag, true, "indent JSON output")
	_ = cmd.MarkFlagRequired(outputFlag)

	return cmd
}

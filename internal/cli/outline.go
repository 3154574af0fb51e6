package cli

import (
	"fmt"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/spf13/cobra"
)

func newOutlineCmd(root *rootOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "outline <input.pdf>",
		Short: "Print the outline inferred from a PDF without writing a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			data, err := flags.readInput(args[0])
			if err != nil {
				return err
			}
			conv, err := convert.New(cfg)
			if err != nil {
				return err
			}

			res, err := conv.Outline(data)
			if err != nil {
				log.Debug("outline failed", "kind", convert.KindOf(err), "error", err)
				return fmt.Errorf("%s (%w)", convert.UserMessage(err), err)
			}
			log.Debug("outline built", "lines", res.Lines, "merged", res.Merged)
			writeOutline(cmd.OutOrStdout(), res)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

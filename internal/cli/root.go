// Package cli implements the pdfoutline command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/pdfoutline/internal/version"
	"github.com/spf13/cobra"
)

// settings shared by every subcommand.
type rootOptions struct {
	verbose bool
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "pdfoutline",
		Short: "Turn structured PDFs into outline spreadsheets",
		Long: `pdfoutline reads a text-based PDF, infers its outline from numbering,
bullets, indentation and font changes, and writes one spreadsheet row per
heading or item with its level.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version.Version
	root.SetVersionTemplate(fmt.Sprintf("pdfoutline %s\n", version.String()))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline details to stderr")

	root.AddCommand(newConvertCmd(opts), newOutlineCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pdfoutline %s\n", version.String())
		},
	}
}

// Execute runs the root command
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

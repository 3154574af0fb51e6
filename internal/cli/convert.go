package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/hierarchy"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/sheet"
	"github.com/dgallion1/pdfoutline/internal/upload"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultMaxBytes = 50 << 20

// pipelineFlags are the conversion settings shared by convert and outline.
type pipelineFlags struct {
	password    string
	indentUnit  float64
	fontDelta   float64
	priority    string
	indentStyle string
	sheetName   string
	skip        []string
	maxBytes    int64
	pdftotext   bool
}

func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	def := hierarchy.DefaultConfig()
	fs.StringVar(&f.password, "password", "", "Password for an encrypted PDF")
	fs.Float64Var(&f.indentUnit, "indent-unit", def.IndentUnit, "Points of horizontal offset per outline level")
	fs.Float64Var(&f.fontDelta, "font-delta", def.FontSizeDelta, "Font size change, in points, that starts a new level")
	fs.StringVar(&f.priority, "priority", def.PriorityString(), "Signal order used to place lines (numbering, indent, font)")
	fs.StringArrayVar(&f.skip, "skip", nil, "Regular expression for lines to drop, e.g. page headers (repeatable)")
	fs.Int64Var(&f.maxBytes, "max-bytes", defaultMaxBytes, "Largest input accepted, in bytes")
	fs.BoolVar(&f.pdftotext, "pdftotext", true, "Fall back to pdftotext, when installed, for PDFs the built-in reader cannot decode")
}

func (f *pipelineFlags) registerSheet(fs *pflag.FlagSet) {
	fs.StringVar(&f.indentStyle, "indent-style", string(sheet.IndentAlign), "How levels are shown in the Text column: indent or spaces")
	fs.StringVar(&f.sheetName, "sheet-name", sheet.DefaultSheetName, "Worksheet name")
}

func (f *pipelineFlags) config() (convert.Config, error) {
	priority, err := hierarchy.ParsePriority(f.priority)
	if err != nil {
		return convert.Config{}, fmt.Errorf("--priority: %w", err)
	}
	style, err := sheet.ParseIndentStyle(f.indentStyle)
	if err != nil {
		return convert.Config{}, fmt.Errorf("--indent-style: %w", err)
	}
	cfg := convert.Config{
		Parser: parser.Options{
			Password:          f.password,
			SkipPatterns:      f.skip,
			FallbackPdftotext: f.pdftotext,
		},
		Hierarchy: hierarchy.Config{
			IndentUnit:    f.indentUnit,
			FontSizeDelta: f.fontDelta,
			Priority:      priority,
		},
		Sheet: sheet.Config{SheetName: f.sheetName, IndentStyle: style},
	}
	if err := cfg.Hierarchy.Validate(); err != nil {
		return convert.Config{}, err
	}
	return cfg, nil
}

// readInput applies the upload policy to a local file and reads it.
func (f *pipelineFlags) readInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	policy := upload.Policy{MaxBytes: f.maxBytes, AllowedExtensions: []string{"pdf"}}
	if err := policy.Check(filepath.Base(path), info.Size()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return os.ReadFile(path)
}

// defaultOutput places the workbook next to the input.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	flags := &pipelineFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "convert <input.pdf>",
		Short: "Convert a PDF into an outline spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)
			input := args[0]
			if output == "" {
				output = defaultOutput(input)
			}

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			data, err := flags.readInput(input)
			if err != nil {
				return err
			}
			conv, err := convert.New(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := conv.Convert(data, output)
			if err != nil {
				log.Debug("conversion failed", "kind", convert.KindOf(err), "error", err)
				return fmt.Errorf("%s (%w)", convert.UserMessage(err), err)
			}
			log.Debug("conversion complete", "duration_ms", time.Since(start).Milliseconds(), "rows", res.Rows)

			writeSummary(cmd.OutOrStdout(), input, output, res)
			return nil
		},
	}
	flags.register(cmd.Flags())
	flags.registerSheet(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .xlsx path (default: input name with .xlsx)")
	return cmd
}

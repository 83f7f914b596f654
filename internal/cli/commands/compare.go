package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/semadiff/semadiff/internal/diff"
	"github.com/semadiff/semadiff/internal/ir/parser"
	"github.com/semadiff/semadiff/internal/pattern"
)

var (
	comparePatterns string
	compareVerbose  bool
	compareDebug    bool
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <old.sir> <new.sir>",
		Short: "Compare two builds of a module",
		Long: `Compare two builds of a SIR module function by function.

Functions present in both builds are diffed instruction by instruction.
With a pattern configuration, divergences matching a loaded difference
pattern are reported as known changes instead of semantic differences.

Examples:
  semadiff compare old.sir new.sir
  semadiff compare old.sir new.sir --patterns patterns.yml
  semadiff compare old.sir new.sir -p patterns.yml --verbose`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&comparePatterns, "patterns", "p", "", "Path to pattern configuration file")
	cmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Also report equal functions")
	cmd.Flags().BoolVar(&compareDebug, "debug", false, "Enable debug logging")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(compareDebug)
	if err != nil {
		return err
	}

	oldMod, err := parser.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load old module: %w", err)
	}
	newMod, err := parser.ParseFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to load new module: %w", err)
	}

	pc, err := loadPatternComparator(comparePatterns, logger)
	if err != nil {
		return err
	}

	results := diff.New(pc, logger).CompareModules(newMod, oldMod)

	w := cmd.OutOrStdout()
	semantic := 0
	for _, d := range results {
		switch d.Kind {
		case diff.Equal:
			if compareVerbose {
				fmt.Fprintf(w, "%s %s\n", color.GreenString("="), d.Function)
			}
		case diff.Known:
			fmt.Fprintf(w, "%s %s: known difference (%s)\n",
				color.YellowString("~"), d.Function, strings.Join(d.Patterns, ", "))
		case diff.Semantic:
			semantic++
			fmt.Fprintf(w, "%s %s: semantic difference%s\n",
				color.RedString("!"), d.Function, diffLocation(d))
		case diff.OnlyInNew:
			semantic++
			fmt.Fprintf(w, "%s %s: only in new build\n", color.RedString("+"), d.Function)
		case diff.OnlyInOld:
			semantic++
			fmt.Fprintf(w, "%s %s: only in old build\n", color.RedString("-"), d.Function)
		}
	}

	if semantic > 0 {
		return fmt.Errorf("%d semantic difference(s) found", semantic)
	}
	fmt.Fprintln(w, color.GreenString("No semantic differences found"))
	return nil
}

// loadPatternComparator builds the pattern comparator, empty when no
// configuration was given.
func loadPatternComparator(configPath string, logger *zap.Logger) (*pattern.Comparator, error) {
	if configPath == "" {
		return pattern.NewComparator(pattern.NewRegistry(logger)), nil
	}
	pc, err := pattern.New(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	return pc, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}


func diffLocation(d diff.Difference) string {
	switch {
	case d.NewInst != nil && d.OldInst != nil:
		return fmt.Sprintf(" at new:%d / old:%d", d.NewInst.Line, d.OldInst.Line)
	case d.NewInst != nil:
		return fmt.Sprintf(" at new:%d", d.NewInst.Line)
	case d.OldInst != nil:
		return fmt.Sprintf(" at old:%d", d.OldInst.Line)
	default:
		return ""
	}
}

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semadiff/semadiff/internal/pattern"
)

var patternsDebug bool

// NewPatternsCommand creates the patterns command
func NewPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns <config.yml>",
		Short: "List the difference patterns a configuration loads",
		Long: `Load a pattern configuration and list every pattern it registers.

Useful for checking which pattern files survive the configured parse-failure
policy and where each pattern's matching starts.

Examples:
  semadiff patterns patterns.yml
  semadiff patterns patterns.yml --debug`,
		Args: cobra.ExactArgs(1),
		RunE: runPatterns,
	}

	cmd.Flags().BoolVar(&patternsDebug, "debug", false, "Enable debug logging")

	return cmd
}

func runPatterns(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(patternsDebug)
	if err != nil {
		return err
	}

	reg := pattern.NewRegistry(logger)
	if err := reg.LoadConfig(args[0]); err != nil {
		return fmt.Errorf("failed to load patterns: %w", err)
	}

	w := cmd.OutOrStdout()
	if !reg.HasPatterns() {
		fmt.Fprintln(w, "No patterns loaded")
		return nil
	}

	policy := reg.OnParseFailure()
	fmt.Fprintf(w, "%s %s\n", color.CyanString("Parse-failure policy:"), policy)

	for _, p := range reg.Patterns() {
		fmt.Fprintf(w, "%s %s\n", color.CyanString("Pattern:"), p.Name)
		fmt.Fprintf(w, "  new side: %s (matching starts at line %d)\n", p.New.Name, p.NewStart.Line)
		fmt.Fprintf(w, "  old side: %s (matching starts at line %d)\n", p.Old.Name, p.OldStart.Line)
		fmt.Fprintf(w, "  annotated instructions: %d\n", len(p.MetadataMap))
	}
	return nil
}

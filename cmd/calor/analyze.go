package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/diagfmt"
	"github.com/calor-lang/effects/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run effect inference, enforcement, and the dataflow checkers over the demo module",
	Long: `analyze runs the full per-module pipeline (resolver init, effect
inference and enforcement, then the per-function CFG/dataflow/checker/taint
suite) over a small built-in demo module and prints the resulting
diagnostics.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	analyzeCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	analyzeCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	analyzeCmd.Flags().Bool("preview", false, "preview suggested-fix edits without applying them")
	analyzeCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	analyzeCmd.Flags().Bool("permissive", false, "treat calls to unresolvable functions as Unknown instead of erroring")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel per-function workers (0=GOMAXPROCS)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	permissive, err := cmd.Flags().GetBool("permissive")
	if err != nil {
		return fmt.Errorf("failed to get permissive flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	policy := pipeline.PolicyStrict
	if permissive {
		policy = pipeline.PolicyPermissive
	}

	b := bast.NewBuilder()
	fs, fileID := demoFileSet()
	mod := buildDemoModule(b, fileID)

	res, err := pipeline.Run(cmd.Context(), b, pipeline.Request{
		Module:         mod,
		Policy:         policy,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := suggest || preview
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	switch format {
	case "pretty":
		diagfmt.Pretty(cmd.OutOrStdout(), res.Bag, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		})
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res, useColor))
	case "short":
		output := diag.FormatGoldenDiagnostics(res.Bag.Items(), fs, withNotes)
		if output != "" {
			fmt.Fprintln(cmd.OutOrStdout(), output)
		}
	case "json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), res.Bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		diagfmt.Sarif(cmd.OutOrStdout(), res.Bag, fs, diagfmt.SarifRunMeta{
			ToolName:    "calor",
			ToolVersion: "0.1.0",
		})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if res.Bag.HasErrors() {
		os.Exit(1)
	}
	return nil
}

var (
	summaryErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	summaryWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	summaryInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	summaryOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// renderSummary counts diagnostics per severity and renders a one-line,
// lipgloss-styled footer under the pretty-printed diagnostic list — the
// same per-severity tally diagfmt.Pretty itself prints per diagnostic, just
// rolled up across the whole run.
func renderSummary(res pipeline.Result, useColor bool) string {
	var errors, warnings, infos int
	for _, d := range res.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errors++
		case diag.SevWarning:
			warnings++
		default:
			infos++
		}
	}

	line := fmt.Sprintf("%d error(s), %d warning(s), %d info across %d function(s)", errors, warnings, infos, len(res.Functions))
	if !useColor {
		return line
	}
	switch {
	case errors > 0:
		return summaryErrorStyle.Render(line)
	case warnings > 0:
		return summaryWarningStyle.Render(line)
	case infos > 0:
		return summaryInfoStyle.Render(line)
	default:
		return summaryOKStyle.Render(line)
	}
}

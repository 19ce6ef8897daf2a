package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/literature-helper/internal/export"
	"github.com/pdiddy/literature-helper/internal/pipeline"
	"github.com/pdiddy/literature-helper/pkg/types"
)

var (
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var runCmd = &cobra.Command{
	Use:   "run <topic...>",
	Short: "Fetch, analyze and export papers for a research topic",
	Long: `Run fetches papers for the topic from the selected source, analyzes each
one with the language model, and prints a digest per paper. With --save,
papers scoring at or above --threshold are added to the configured Zotero
library; duplicates already in the library are skipped unless
--allow-duplicates is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("source", "scholar", "literature source: scholar, semantic_scholar, arxiv, openalex")
	runCmd.Flags().Int("count", 10, "number of papers to fetch")
	runCmd.Flags().Float64("threshold", -1, "minimum relevance score to save (default: half the score scale)")
	runCmd.Flags().Bool("save", false, "save qualifying papers to Zotero")
	runCmd.Flags().Bool("allow-duplicates", false, "save papers even if the library already has them")
	runCmd.Flags().Bool("extract", false, "include a full-text excerpt in the analysis (overrides extract.enabled)")
	runCmd.Flags().String("zotero-collection-id", "", "collection for saved items (default: zotero-collection-id secret)")
	runCmd.Flags().String("export-dir", "", "write .bib and .md files for every paper into this directory")
	runCmd.Flags().String("report", "", "write the full run report as YAML to this file")
	runCmd.Flags().Bool("json", false, "print the report as JSON instead of rendered digests")
	runCmd.Flags().Bool("plain", false, "print digests as raw Markdown")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("extract") {
		cfg.Extract.Enabled, _ = cmd.Flags().GetBool("extract")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p, _, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	count, _ := cmd.Flags().GetInt("count")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold < 0 {
		threshold = p.DefaultThreshold()
	}
	save, _ := cmd.Flags().GetBool("save")
	allowDup, _ := cmd.Flags().GetBool("allow-duplicates")
	jsonOut, _ := cmd.Flags().GetBool("json")
	plain, _ := cmd.Flags().GetBool("plain")
	exportDir, _ := cmd.Flags().GetString("export-dir")
	reportPath, _ := cmd.Flags().GetString("report")

	stderr := cmd.ErrOrStderr()
	req := pipeline.Request{
		Query:           strings.Join(args, " "),
		Source:          source,
		Count:           count,
		Threshold:       threshold,
		Save:            save,
		AllowDuplicates: allowDup,
		Observer: func(i, total int, r types.PaperResult) {
			fmt.Fprintf(stderr, "%s\n", mutedStyle.Render(fmt.Sprintf("[%d/%d] %s (score %s)", i, total, r.Paper.Title, formatScore(r.Analysis.Score))))
		},
	}

	report, err := p.Run(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := printReport(out, stderr, report, plain); err != nil {
		return err
	}

	if exportDir != "" {
		files, err := writeExports(exportDir, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %d export file(s) to %s\n", len(files), exportDir)
	}
	if reportPath != "" {
		if err := writeReportYAML(reportPath, report); err != nil {
			return err
		}
	}
	if save {
		fmt.Fprintln(out, summaryStyle.Render("Zotero: "+report.Summary.String()))
	}
	return nil
}

// printReport writes run-level notices to stderr and each paper's digest,
// with its notices, to out.
func printReport(out, stderr io.Writer, report *types.Report, plain bool) error {
	printNotices(stderr, report.Notices)

	var renderer *glamour.TermRenderer
	if !plain {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			renderer = r
		}
	}

	for i, r := range report.Papers {
		md := fmt.Sprintf("## %d.\n\n%s", i+1, r.Digest)
		if renderer != nil {
			rendered, err := renderer.Render(md)
			if err == nil {
				md = rendered
			}
		}
		if _, err := fmt.Fprintln(out, md); err != nil {
			return err
		}
		printNotices(stderr, r.Notices)
		if r.Save != nil && r.Save.Saved() {
			fmt.Fprintln(stderr, summaryStyle.Render("saved to Zotero as "+r.Save.Key))
		}
	}
	return nil
}

func printNotices(w io.Writer, notices []types.Notice) {
	for _, n := range notices {
		line := fmt.Sprintf("%s: %s: %s", n.Level, n.Component, n.Message)
		switch n.Level {
		case types.LevelError:
			line = errorStyle.Render(line)
		case types.LevelWarning:
			line = warnStyle.Render(line)
		default:
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

// writeExports writes a .bib and a .md file per paper plus a CSL-YAML
// bibliography of the whole run. Names colliding within one run get a
// numeric suffix. It returns the paths written.
func writeExports(dir string, report *types.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	used := make(map[string]int)
	unique := func(name string) string {
		used[name]++
		if n := used[name]; n > 1 {
			ext := filepath.Ext(name)
			return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
		}
		return name
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, unique(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	for _, r := range report.Papers {
		if err := write(export.Filename(r.Paper.Title, "bib"), []byte(r.BibTeX)); err != nil {
			return written, err
		}
		if err := write(export.Filename(r.Paper.Title, "md"), []byte(r.Digest)); err != nil {
			return written, err
		}
	}

	if len(report.Papers) > 0 {
		var b strings.Builder
		if err := export.WriteCSL(&b, report.Papers); err != nil {
			return written, fmt.Errorf("rendering CSL: %w", err)
		}
		if err := write(export.Filename(report.Query, "yaml"), []byte(b.String())); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeReportYAML(path string, report *types.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

func formatScore(score float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", score), "0"), ".")
}

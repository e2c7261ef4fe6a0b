package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dmelnic/storylens/internal/detect"
	"github.com/dmelnic/storylens/internal/graph"
	"github.com/dmelnic/storylens/internal/pipeline"
	"github.com/dmelnic/storylens/internal/relation"
	"github.com/dmelnic/storylens/internal/report"
	"github.com/dmelnic/storylens/pkg/models"
)

var (
	minMentions int
	window      int
	threshold   float64
	rulesPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storylens",
		Short: "Character and relationship analysis for short narratives",
	}

	rootCmd.PersistentFlags().IntVar(&minMentions, "min-mentions", 3, "minimum mentions to keep a character")
	rootCmd.PersistentFlags().IntVar(&window, "window", 3, "sentence window for proximity counting")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0.5, "capitalization consistency threshold")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to a YAML relation rule table")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the stderr logger, honoring LOG_LEVEL when set.
func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func buildAnalyzer(logger *log.Logger) (*pipeline.Analyzer, error) {
	relCfg := relation.Config{Window: window}
	if rulesPath != "" {
		rules, err := relation.LoadRules(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		relCfg.Rules = rules
	}

	return pipeline.NewAnalyzer(pipeline.Config{
		Detect: detect.Config{
			MinMentions:             minMentions,
			CapitalizationThreshold: threshold,
		},
		Relation: relCfg,
		Logger:   logger,
	}), nil
}

// writeOutputs renders the requested report formats and graph next to
// each other in the output directory.
func writeOutputs(analysis *models.Analysis, format, outputDir, graphFormat string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(analysis.Filename, filepath.Ext(analysis.Filename))

	if format == report.FormatJSON || format == "all" {
		data, err := report.JSON(analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outputDir, base+"_analysis.json"), data, 0o644); err != nil {
			return err
		}
	}

	if format == report.FormatMarkdown || format == "all" {
		out, err := report.Markdown(analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outputDir, base+"_report.md"), []byte(out), 0o644); err != nil {
			return err
		}
	}

	if format == report.FormatHTML || format == "all" {
		out, err := report.HTML(analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outputDir, base+"_report.html"), []byte(out), 0o644); err != nil {
			return err
		}
	}

	switch graphFormat {
	case "":
	case "dot":
		g := graph.Build(analysis)
		if err := os.WriteFile(filepath.Join(outputDir, base+"_graph.dot"), []byte(graph.DOT(g)), 0o644); err != nil {
			return err
		}
	case "svg":
		g := graph.Build(analysis)
		if err := os.WriteFile(filepath.Join(outputDir, base+"_graph.svg"), []byte(graph.SVG(g)), 0o644); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown graph format %q", graphFormat)
	}

	return nil
}

func validFormat(format string) bool {
	switch format {
	case report.FormatJSON, report.FormatMarkdown, report.FormatHTML, "all":
		return true
	}
	return false
}

func analyzeCmd() *cobra.Command {
	var (
		format      string
		outputDir   string
		graphFormat string
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze one narrative document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q", format)
			}

			logger := newLogger()
			analyzer, err := buildAnalyzer(logger)
			if err != nil {
				return err
			}

			analysis, err := analyzer.AnalyzeFile(args[0])
			if err != nil {
				return err
			}

			if err := writeOutputs(analysis, format, outputDir, graphFormat); err != nil {
				return err
			}

			fmt.Printf("Analyzed %s: %d characters, %d relations\n",
				analysis.Filename, len(analysis.Characters), len(analysis.Relations))
			fmt.Printf("Results written to %s\n", outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "all", "report format: json, markdown, html, or all")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "directory for generated files")
	cmd.Flags().StringVar(&graphFormat, "graph", "", "also write a relationship graph: dot or svg")
	return cmd
}

func batchCmd() *cobra.Command {
	var (
		format      string
		outputDir   string
		graphFormat string
	)

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Analyze every .txt and .md document in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q", format)
			}

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}

			var paths []string
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				ext := filepath.Ext(entry.Name())
				if ext == ".txt" || ext == ".md" {
					paths = append(paths, filepath.Join(args[0], entry.Name()))
				}
			}
			sort.Strings(paths)
			if len(paths) == 0 {
				return fmt.Errorf("no .txt or .md documents in %s", args[0])
			}

			logger := newLogger()
			analyzer, err := buildAnalyzer(logger)
			if err != nil {
				return err
			}

			results := analyzer.Batch(paths)

			var summary strings.Builder
			summary.WriteString("# Batch Analysis Summary\n\n")
			failed := 0
			for _, res := range results {
				name := filepath.Base(res.Path)
				if res.Err != nil {
					failed++
					summary.WriteString(report.FailureNote(name, res.Err))
					summary.WriteString("\n")
					continue
				}
				if err := writeOutputs(res.Analysis, format, outputDir, graphFormat); err != nil {
					return err
				}
				fmt.Fprintf(&summary, "## %s\n\n%d characters, %d relations\n\n",
					name, len(res.Analysis.Characters), len(res.Analysis.Relations))
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}
			summaryPath := filepath.Join(outputDir, "batch_summary.md")
			if err := os.WriteFile(summaryPath, []byte(summary.String()), 0o644); err != nil {
				return err
			}

			fmt.Printf("Analyzed %d documents, %d failed. Summary: %s\n",
				len(results), failed, summaryPath)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "all", "report format: json, markdown, html, or all")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "directory for generated files")
	cmd.Flags().StringVar(&graphFormat, "graph", "", "also write relationship graphs: dot or svg")
	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with relation rule tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a YAML relation rule table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := relation.LoadRules(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d rules OK\n", args[0], len(rules))
			return nil
		},
	})

	return cmd
}

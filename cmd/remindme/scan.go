package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/ksysoev/remindme-action/pkg/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "List the issues that would be created from @TODO comments",
	Long: `Scan files and directories for @TODO comments and print the issue
drafts built from them. Directories are walked recursively; the current
directory is scanned when no path is given.

Examples:
  # Scan the current directory
  remindme scan

  # Scan two files and print YAML
  remindme scan main.go src/app.ts --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		format, _ := cmd.Flags().GetString("format")
		anchor, _ := cmd.Flags().GetString("anchor")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		cfg, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}

		opts, err := cfg.scanOptions(anchor, concurrency)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			args = []string{"."}
		}

		drafts, err := scanPaths(cmd.Context(), args, cfg.ExcludeDirs, opts)
		if err != nil {
			return err
		}

		if err := renderDrafts(cmd.OutOrStdout(), format, drafts); err != nil {
			return err
		}

		green := color.New(color.FgGreen)
		green.Fprintf(cmd.ErrOrStderr(), "✓ Found %d TODO comments\n", len(drafts))

		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
	scanCmd.Flags().String("anchor", "", "payload anchor: first-colon or marker-colon")
	scanCmd.Flags().Int("concurrency", 0, "maximum number of files scanned at once")
	rootCmd.AddCommand(scanCmd)
}

func scanPaths(ctx context.Context, paths, excludeDirs []string, opts core.ScanOptions) ([]core.IssueDraft, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		drafts []core.IssueDraft
		files  []string
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		exclude := make([]string, 0, len(excludeDirs))
		for _, dir := range excludeDirs {
			exclude = append(exclude, filepath.Join(path, dir))
		}

		found, err := core.ScanDirectory(ctx, path, exclude, opts)
		if err != nil {
			return nil, err
		}

		for i := range found {
			found[i].FilePath = filepath.ToSlash(filepath.Join(path, found[i].FilePath))
		}

		drafts = append(drafts, found...)
	}

	found, err := core.ScanFiles(ctx, "", files, opts)
	if err != nil {
		return nil, err
	}

	return append(drafts, found...), nil
}

func renderDrafts(w io.Writer, format string, drafts []core.IssueDraft) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if drafts == nil {
			drafts = []core.IssueDraft{}
		}

		return enc.Encode(drafts)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(drafts); err != nil {
			return err
		}

		return enc.Close()
	case "text":
		bold := color.New(color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, d := range drafts {
			fmt.Fprintf(w, "%s:%d %s\n", d.FilePath, d.LineNumber, bold(d.Title))
			printList(w, gray("labels"), d.Labels)
			printList(w, gray("assignees"), d.Assignees)
			printList(w, gray("milestones"), d.Milestones)

			if d.Body != "" {
				fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(d.Body, "\n", "\n  "))
			}
		}

		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printList(w io.Writer, name string, items []string) {
	if len(items) > 0 {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(items, ", "))
	}
}

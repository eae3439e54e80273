package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/ksysoev/remindme-action/pkg/core"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <file>",
	Short: "Dump the raw fields of every comment in a file",
	Long: `Print each comment block of a file together with the fields extracted
from it. Handy for checking how continuation lines are folded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anchorFlag, _ := cmd.Flags().GetString("anchor")

		anchor, err := core.ParsePayloadAnchor(anchorFlag)
		if err != nil {
			return err
		}

		lang := core.LanguageForFile(args[0])
		if lang == nil {
			return fmt.Errorf("%w: %s", core.ErrUnsupportedFile, args[0])
		}

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		comments, err := core.ExtractComments(file, lang)
		if err != nil {
			return err
		}

		return printFields(cmd.OutOrStdout(), comments, anchor)
	},
}

func init() {
	fieldsCmd.Flags().String("anchor", "", "payload anchor: first-colon or marker-colon")
	rootCmd.AddCommand(fieldsCmd)
}

func printFields(w io.Writer, comments []core.Comment, anchor core.PayloadAnchor) error {
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, comment := range comments {
		fields := core.CollectFields(comment.Contents, core.WithPayloadAnchor(anchor))
		if len(fields) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "line %d (%s)\n", comment.StartLine, comment.Type); err != nil {
			return err
		}

		for _, f := range fields {
			text := strings.ReplaceAll(f.Text, "\n", "\n    ")
			if _, err := fmt.Fprintf(w, "  %s: %s\n", cyan(f.Kind), text); err != nil {
				return err
			}
		}
	}

	return nil
}

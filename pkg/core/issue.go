package core

import (
	"strings"
)

// BuildDraft assembles an issue draft from the fields of one comment.
// The first todo field is the title, body fields are joined by a blank line,
// and list fields are split on commas and newlines.
func BuildDraft(fields []Field) IssueDraft {
	var (
		draft  IssueDraft
		bodies []string
	)

	for _, f := range fields {
		switch f.Kind {
		case FieldTodo:
			if draft.Title == "" {
				draft.Title = firstLine(f.Text)
				if rest := remainingLines(f.Text); rest != "" {
					bodies = append(bodies, rest)
				}
			}
		case FieldBody:
			if f.Text != "" {
				bodies = append(bodies, f.Text)
			}
		case FieldLabels:
			draft.Labels = appendList(draft.Labels, f.Text)
		case FieldAssignees:
			draft.Assignees = appendList(draft.Assignees, f.Text)
		case FieldMilestones:
			draft.Milestones = appendList(draft.Milestones, f.Text)
		}
	}

	draft.Body = strings.Join(bodies, "\n\n")

	return draft
}

// SplitList splits a list field on commas and newlines, trimming entries
// and dropping empty ones.
func SplitList(text string) []string {
	var items []string

	for _, item := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func appendList(dst []string, text string) []string {
	for _, item := range SplitList(text) {
		if !containsFold(dst, item) {
			dst = append(dst, item)
		}
	}

	return dst
}

func containsFold(items []string, s string) bool {
	for _, item := range items {
		if strings.EqualFold(item, s) {
			return true
		}
	}

	return false
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func remainingLines(s string) string {
	_, rest, _ := strings.Cut(s, "\n")
	return strings.TrimRight(strings.TrimLeft(rest, "\n"), " \t\n")
}

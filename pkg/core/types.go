package core

// Line is a single physical line of a comment block.
type Line struct {
	Number int
	Value  string
}

// CommentType distinguishes runs of line comments from block comments.
type CommentType string

const (
	SingleLineComment CommentType = "single-line"
	MultiLineComment  CommentType = "multiline"
)

// Comment is a contiguous comment block extracted from a source file.
type Comment struct {
	Type      CommentType
	StartLine int
	Contents  []Line
}

// IssueDraft represents an issue assembled from the fields of one comment
type IssueDraft struct {
	FilePath   string   `json:"file_path" yaml:"file_path"`
	LineNumber int      `json:"line" yaml:"line"`
	Title      string   `json:"title" yaml:"title"`
	Body       string   `json:"body,omitempty" yaml:"body,omitempty"`
	Labels     []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Assignees  []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Milestones []string `json:"milestones,omitempty" yaml:"milestones,omitempty"`
}

// Valid reports whether the draft can become an issue.
func (d IssueDraft) Valid() bool {
	return d.Title != ""
}

// Config represents the GitHub Action configuration
type Config struct {
	GitHubToken      string
	BranchName       string
	IssueTitlePrefix string
	PayloadAnchor    PayloadAnchor
	MaxConcurrency   int
	DryRun           bool
	MergedOnly       bool
}

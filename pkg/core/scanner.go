package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrency = 4

// ScanOptions controls how files are scanned for todo comments.
type ScanOptions struct {
	PayloadAnchor  PayloadAnchor
	MaxConcurrency int
}

// ParseTodoComments extracts issue drafts from the source read from r.
// Comments without a todo field are skipped.
func ParseTodoComments(r io.Reader, filePath string, opts ScanOptions) ([]IssueDraft, error) {
	comments, err := ExtractComments(r, LanguageForFile(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to extract comments from %s: %w", filePath, err)
	}

	var drafts []IssueDraft
	for _, comment := range comments {
		fields := CollectFields(comment.Contents, WithPayloadAnchor(opts.PayloadAnchor))

		draft := BuildDraft(fields)
		if !draft.Valid() {
			continue
		}

		draft.FilePath = filePath
		draft.LineNumber = todoLine(comment, opts.PayloadAnchor)
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// todoLine returns the line number of the first todo marker in comment.
func todoLine(comment Comment, anchor PayloadAnchor) int {
	for _, line := range comment.Contents {
		if m, ok := DetectMarker(line.Value, anchor); ok && m.Kind == FieldTodo {
			return line.Number
		}
	}

	return comment.StartLine
}

// ScanFile scans a single file for todo comments. Unsupported files yield
// no drafts.
func ScanFile(path string, opts ScanOptions) ([]IssueDraft, error) {
	if !IsSupported(path) {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseTodoComments(file, path, opts)
}

// ScanFiles scans files concurrently and returns their drafts in the order
// the files were given. root, when set, is stripped from the reported paths.
func ScanFiles(ctx context.Context, root string, paths []string, opts ScanOptions) ([]IssueDraft, error) {
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = defaultMaxConcurrency
	}

	results := make([][]IssueDraft, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			drafts, err := ScanFile(filepath.Join(root, path), opts)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", path, err)
			}

			for j := range drafts {
				drafts[j].FilePath = filepath.ToSlash(path)
			}

			results[i] = drafts

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []IssueDraft
	for _, drafts := range results {
		all = append(all, drafts...)
	}

	return all, nil
}

// ScanDirectory recursively scans a directory for todo comments
func ScanDirectory(ctx context.Context, dir string, excludeDirs []string, opts ScanOptions) ([]IssueDraft, error) {
	var paths []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip excluded directories
		if info.IsDir() {
			for _, excludeDir := range excludeDirs {
				if isWithin(path, excludeDir) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !IsSupported(path) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return ScanFiles(ctx, dir, paths, opts)
}

// isWithin reports whether path is dir or lies below it.
func isWithin(path, dir string) bool {
	dir = filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

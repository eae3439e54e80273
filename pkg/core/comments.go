package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned for files with no known comment syntax.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Language defines comment styles for different programming languages
type Language struct {
	Extensions        []string
	LineComment       string
	BlockCommentStart string
	BlockCommentEnd   string
}

var supportedLanguages = []Language{
	{Extensions: []string{".go"}, LineComment: "//", BlockCommentStart: "/*", BlockCommentEnd: "*/"},
	{Extensions: []string{".java", ".js", ".ts", ".jsx", ".tsx", ".c", ".cpp", ".cs", ".h", ".hpp", ".swift", ".kt", ".rs", ".php", ".scala", ".groovy", ".dart"}, LineComment: "//", BlockCommentStart: "/*", BlockCommentEnd: "*/"},
	{Extensions: []string{".py", ".rb", ".pl", ".r", ".sh", ".bash", ".yml", ".yaml", ".toml"}, LineComment: "#"},
	{Extensions: []string{".lua"}, LineComment: "--"},
	{Extensions: []string{".sql"}, LineComment: "--", BlockCommentStart: "/*", BlockCommentEnd: "*/"},
	{Extensions: []string{".html", ".xml", ".md", ".markdown"}, BlockCommentStart: "<!--", BlockCommentEnd: "-->"},
	{Extensions: []string{".css"}, BlockCommentStart: "/*", BlockCommentEnd: "*/"},
	{Extensions: []string{".ex", ".exs"}, LineComment: "#"},
	{Extensions: []string{".erl", ".hrl"}, LineComment: "%"},
	{Extensions: []string{".hs"}, LineComment: "--", BlockCommentStart: "{-", BlockCommentEnd: "-}"},
	{Extensions: []string{".ps1"}, LineComment: "#", BlockCommentStart: "<#", BlockCommentEnd: "#>"},
	{Extensions: []string{".fs"}, LineComment: "//", BlockCommentStart: "(*", BlockCommentEnd: "*)"},
	{Extensions: []string{".m"}, LineComment: "//", BlockCommentStart: "/*", BlockCommentEnd: "*/"},
}

// LanguageForFile determines the language of a file based on its extension
func LanguageForFile(filename string) *Language {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, lang := range supportedLanguages {
		for _, langExt := range lang.Extensions {
			if ext == langExt {
				return &lang
			}
		}
	}

	return nil
}

// IsSupported reports whether comments can be extracted from filename.
func IsSupported(filename string) bool {
	return LanguageForFile(filename) != nil
}

// ExtractComments splits the source read from r into comment blocks.
// Consecutive line comments form one block. Block comments keep their
// delimiter lines so that markers keep their original columns; the closing
// delimiter and anything after it are cut from the last line.
func ExtractComments(r io.Reader, lang *Language) ([]Comment, error) {
	if lang == nil {
		return nil, ErrUnsupportedFile
	}

	var (
		comments []Comment
		current  *Comment
		inBlock  bool
	)

	flush := func() {
		if current != nil {
			comments = append(comments, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmedLine := strings.TrimSpace(line)

		if inBlock {
			end := strings.Index(line, lang.BlockCommentEnd)
			if end < 0 {
				current.Contents = append(current.Contents, Line{Number: lineNum, Value: line})
				continue
			}

			// The closer and any code after it are not comment text.
			current.Contents = append(current.Contents, Line{Number: lineNum, Value: line[:end]})
			inBlock = false
			flush()

			continue
		}

		if lang.LineComment != "" && strings.HasPrefix(trimmedLine, lang.LineComment) {
			if current == nil {
				current = &Comment{Type: SingleLineComment, StartLine: lineNum}
			}

			current.Contents = append(current.Contents, Line{Number: lineNum, Value: line})

			continue
		}

		// Any other line ends a run of line comments.
		flush()

		if lang.BlockCommentStart == "" {
			continue
		}

		start := strings.Index(line, lang.BlockCommentStart)
		if start < 0 {
			continue
		}

		value := line
		opened := start + len(lang.BlockCommentStart)
		end := strings.Index(line[opened:], lang.BlockCommentEnd)
		if end >= 0 {
			value = line[:opened+end]
		}

		current = &Comment{
			Type:      MultiLineComment,
			StartLine: lineNum,
			Contents:  []Line{{Number: lineNum, Value: value}},
		}

		if end >= 0 {
			flush()
		} else {
			inBlock = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	// An unterminated block comment still counts.
	flush()

	return comments, nil
}

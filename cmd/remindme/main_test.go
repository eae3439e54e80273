package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/ksysoev/remindme-action/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFileConfig(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := loadFileConfig(defaultConfigFile)
		require.NoError(t, err)
		assert.Equal(t, []string{".git", "node_modules", "vendor"}, cfg.ExcludeDirs)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadFileConfig(filepath.Join(t.TempDir(), "other.yaml"))
		assert.Error(t, err)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "remindme.yaml")
		writeFile(t, path, "exclude_dirs: [build]\npayload_anchor: marker-colon\nmax_concurrency: 2\n")

		cfg, err := loadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, &FileConfig{ExcludeDirs: []string{"build"}, PayloadAnchor: "marker-colon", MaxConcurrency: 2}, cfg)

		opts, err := cfg.scanOptions("", 0)
		require.NoError(t, err)
		assert.Equal(t, core.ScanOptions{PayloadAnchor: core.AnchorMarkerColon, MaxConcurrency: 2}, opts)

		opts, err = cfg.scanOptions("first-colon", 6)
		require.NoError(t, err)
		assert.Equal(t, core.ScanOptions{PayloadAnchor: core.AnchorFirstColon, MaxConcurrency: 6}, opts)
	})

	t.Run("invalid anchor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "remindme.yaml")
		writeFile(t, path, "payload_anchor: somewhere\n")

		_, err := loadFileConfig(path)
		assert.ErrorContains(t, err, "unknown payload anchor")
	})
}

func TestScanPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.go"), "// @TODO: in dir\n")
	writeFile(t, filepath.Join(dir, "vendor", "b.go"), "// @TODO: vendored\n")
	writeFile(t, filepath.Join(dir, "single.py"), "# @TODO: single file\n# @labels: x\n")

	drafts, err := scanPaths(context.Background(),
		[]string{filepath.Join(dir, "src"), filepath.Join(dir, "single.py")},
		[]string{"vendor"}, core.ScanOptions{})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "src", "a.go")), drafts[0].FilePath)
	assert.Equal(t, "in dir", drafts[0].Title)
	assert.Equal(t, "single file", drafts[1].Title)
	assert.Equal(t, []string{"x"}, drafts[1].Labels)
}

func TestRenderDrafts(t *testing.T) {
	drafts := []core.IssueDraft{{
		FilePath:   "a.go",
		LineNumber: 3,
		Title:      "Do it",
		Body:       "first\nsecond",
		Labels:     []string{"bug", "ui"},
	}}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderDrafts(&buf, "text", drafts))
		assert.Equal(t, "a.go:3 Do it\n  labels: bug, ui\n  first\n  second\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderDrafts(&buf, "json", drafts))

		var got []core.IssueDraft
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, drafts, got)
	})

	t.Run("empty json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderDrafts(&buf, "json", nil))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderDrafts(&buf, "yaml", drafts))

		var got []core.IssueDraft
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, drafts, got)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, renderDrafts(&bytes.Buffer{}, "xml", drafts))
	})
}

func TestPrintFields(t *testing.T) {
	comments := []core.Comment{
		{Type: core.SingleLineComment, StartLine: 1, Contents: []core.Line{{Number: 1, Value: "// nothing here"}}},
		{Type: core.MultiLineComment, StartLine: 4, Contents: []core.Line{
			{Number: 4, Value: "/*"},
			{Number: 5, Value: " * @TODO: title"},
			{Number: 6, Value: " * more"},
			{Number: 7, Value: " * @labels: a, b"},
			{Number: 8, Value: " */"},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, printFields(&buf, comments, core.AnchorFirstColon))

	assert.Equal(t, "line 4 (multiline)\n  todo: title\n    more\n  labels: a, b\n", buf.String())
}

func TestFieldsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"fields", filepath.Join("..", "..", "pkg", "core", "testdata", "sample.go")})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "todo: Add support for Dart language")
	assert.Contains(t, out.String(), "milestones: v1.0")
}

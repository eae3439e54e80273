package core

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldKind identifies which marker opened a field.
type FieldKind int

// Markers are listed in detection priority order.
const (
	FieldTodo FieldKind = iota
	FieldBody
	FieldLabels
	FieldAssignees
	FieldMilestones
)

var fieldNames = [...]string{
	FieldTodo:       "todo",
	FieldBody:       "body",
	FieldLabels:     "labels",
	FieldAssignees:  "assignees",
	FieldMilestones: "milestones",
}

var markerPatterns = [...]*regexp.Regexp{
	FieldTodo:       markerPattern("@TODO"),
	FieldBody:       markerPattern("@body"),
	FieldLabels:     markerPattern("@labels"),
	FieldAssignees:  markerPattern("@assignees"),
	FieldMilestones: markerPattern("@milestones"),
}

func markerPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(token) + `:`)
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(fieldNames) {
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}

	return fieldNames[k]
}

// MarshalText lets field kinds serialize by name.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PayloadAnchor selects the colon a field payload starts after.
type PayloadAnchor int

const (
	// AnchorFirstColon starts the payload after the first colon on the line,
	// even when that colon comes before the marker.
	AnchorFirstColon PayloadAnchor = iota
	// AnchorMarkerColon starts the payload after the colon closing the marker.
	AnchorMarkerColon
)

// ParsePayloadAnchor converts a configuration value into a PayloadAnchor.
// An empty value selects AnchorFirstColon.
func ParsePayloadAnchor(s string) (PayloadAnchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-colon":
		return AnchorFirstColon, nil
	case "marker-colon":
		return AnchorMarkerColon, nil
	default:
		return AnchorFirstColon, fmt.Errorf("unknown payload anchor %q", s)
	}
}

func (a PayloadAnchor) String() string {
	if a == AnchorMarkerColon {
		return "marker-colon"
	}

	return "first-colon"
}

// Marker is a recognized marker occurrence within a line.
type Marker struct {
	Kind         FieldKind
	Start        int
	PayloadStart int
}

// Field is one labeled field extracted from a comment.
type Field struct {
	Kind FieldKind `json:"kind" yaml:"kind"`
	Text string    `json:"text" yaml:"text"`
}

// DetectMarker reports the first marker found in line, checking kinds in
// priority order rather than by position.
func DetectMarker(line string, anchor PayloadAnchor) (Marker, bool) {
	for kind, re := range markerPatterns {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}

		payload := loc[1]
		if anchor == AnchorFirstColon {
			payload = strings.IndexByte(line, ':') + 1
		}

		return Marker{Kind: FieldKind(kind), Start: loc[0], PayloadStart: payload}, true
	}

	return Marker{}, false
}

type extractOptions struct {
	anchor PayloadAnchor
}

// Option configures field extraction.
type Option func(*extractOptions)

// WithPayloadAnchor sets the payload anchor policy.
func WithPayloadAnchor(a PayloadAnchor) Option {
	return func(o *extractOptions) {
		o.anchor = a
	}
}

// ExtractFields returns the fields of a comment in the order their markers
// appear. Lines before the first marker are dropped. Lines without a marker
// are appended to the active field starting at the active marker's column,
// so indentation past that column is kept. The column is counted in
// characters, so a continuation line is never cut inside a multi-byte rune.
func ExtractFields(lines []Line, opts ...Option) iter.Seq[Field] {
	var o extractOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Field) bool) {
		var (
			active  bool
			column  int
			current Field
			buf     strings.Builder
		)

		for _, line := range lines {
			if m, ok := DetectMarker(line.Value, o.anchor); ok {
				if active {
					current.Text = buf.String()
					if !yield(current) {
						return
					}
				}

				active = true
				column = utf8.RuneCountInString(line.Value[:m.Start])
				current = Field{Kind: m.Kind}
				buf.Reset()
				buf.WriteString(strings.TrimSpace(line.Value[m.PayloadStart:]))

				continue
			}

			if !active {
				continue
			}

			if rest := skipRunes(line.Value, column); rest != "" {
				buf.WriteByte('\n')
				buf.WriteString(rest)
			}
		}

		if active {
			current.Text = buf.String()
			yield(current)
		}
	}
}

// skipRunes drops the first n characters of s.
func skipRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}

	return ""
}

// CollectFields is ExtractFields materialized into a slice.
func CollectFields(lines []Line, opts ...Option) []Field {
	var fields []Field
	for f := range ExtractFields(lines, opts...) {
		fields = append(fields, f)
	}

	return fields
}

// SPDX-License-Identifier: MPL-2.0

package fstree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	// FolderGlyph marks a folder line in a tree description.
	FolderGlyph = "📂"
	// FileGlyph marks a file line in a tree description.
	FileGlyph = "📄"

	// closedFolderGlyph is accepted as a synonym of FolderGlyph.
	closedFolderGlyph = "📁"

	// indentWidth is the number of spaces per nesting level. A tab counts as
	// one full level.
	indentWidth = 2
)

// ErrMalformedDescription is wrapped by every error returned from Parse.
var ErrMalformedDescription = errors.New("malformed tree description")

type (
	// ParseError points at the offending line of a tree description.
	ParseError struct {
		Line   int
		Reason string
	}

	// draft is the mutable form of a folder used while parsing.
	draft struct {
		path     string
		depth    int
		children []any // *File or *draft
	}
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedDescription) hold for every ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedDescription
}

// Parse reads a tree description and builds a folder rooted at root.
// Common leading indentation shared by all lines is ignored, so descriptions
// can be written inline in indented Go raw strings.
func Parse(r io.Reader, root string) (*Folder, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)

	type line struct {
		num    int
		indent int
		text   string
	}
	var lines []line
	num := 0
	for sc.Scan() {
		num++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent := indentOf(raw)
		lines = append(lines, line{num: num, indent: indent, text: strings.TrimLeft(raw, " \t")})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tree description: %w", err)
	}

	base := -1
	for _, l := range lines {
		if base == -1 || l.indent < base {
			base = l.indent
		}
	}

	top := &draft{path: filepath.Clean(root), depth: -1}
	stack := []*draft{top}
	prevDepth := -1
	for _, l := range lines {
		offset := l.indent - base
		if offset%indentWidth != 0 {
			return nil, &ParseError{Line: l.num, Reason: fmt.Sprintf("indentation must be a multiple of %d spaces", indentWidth)}
		}
		depth := offset / indentWidth
		if depth > prevDepth+1 {
			return nil, &ParseError{Line: l.num, Reason: "indented more than one level below the previous line"}
		}

		isFolder, name, err := splitEntry(l.text)
		if err != nil {
			return nil, &ParseError{Line: l.num, Reason: err.Error()}
		}

		for len(stack) > 1 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		if parent.depth != depth-1 {
			return nil, &ParseError{Line: l.num, Reason: "entry is nested under a file"}
		}

		path := filepath.Join(parent.path, name)
		if isFolder {
			d := &draft{path: path, depth: depth}
			parent.children = append(parent.children, d)
			stack = append(stack, d)
		} else {
			parent.children = append(parent.children, NewFile(path))
		}
		prevDepth = depth
	}

	return top.freeze(), nil
}

// ParseString is Parse over a string.
func ParseString(description, root string) (*Folder, error) {
	return Parse(strings.NewReader(description), root)
}

// MustParse parses a description rooted at "/" and panics on error.
// Intended for tests and examples.
func MustParse(description string) *Folder {
	root, err := ParseString(description, "/")
	if err != nil {
		panic(fmt.Sprintf("fstree.MustParse: %v", err))
	}
	return root
}

func (d *draft) freeze() *Folder {
	children := make([]Node, 0, len(d.children))
	for _, c := range d.children {
		switch c := c.(type) {
		case *File:
			children = append(children, c)
		case *draft:
			children = append(children, c.freeze())
		}
	}
	return &Folder{path: d.path, children: children}
}

func indentOf(raw string) int {
	n := 0
	for _, r := range raw {
		switch r {
		case ' ':
			n++
		case '\t':
			n += indentWidth
		default:
			return n
		}
	}
	return n
}

func splitEntry(text string) (isFolder bool, name string, err error) {
	switch {
	case strings.HasPrefix(text, FolderGlyph):
		isFolder, name = true, strings.TrimPrefix(text, FolderGlyph)
	case strings.HasPrefix(text, closedFolderGlyph):
		isFolder, name = true, strings.TrimPrefix(text, closedFolderGlyph)
	case strings.HasPrefix(text, FileGlyph):
		name = strings.TrimPrefix(text, FileGlyph)
	default:
		return false, "", fmt.Errorf("expected %s or %s at the start of %q", FolderGlyph, FileGlyph, text)
	}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return false, "", errors.New("missing name")
	case name == "." || name == "..":
		return false, "", fmt.Errorf("invalid name %q", name)
	case strings.ContainsAny(name, `/\`):
		return false, "", fmt.Errorf("name %q must not contain path separators", name)
	}
	return isFolder, name, nil
}

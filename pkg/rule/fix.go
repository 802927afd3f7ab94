// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Fix kinds, used as the "type" tag in JSON output.
const (
	FixRename       FixKind = "rename"
	FixCreateFile   FixKind = "create-file"
	FixCreateFolder FixKind = "create-folder"
	FixDelete       FixKind = "delete"
	FixModifyFile   FixKind = "modify-file"
)

type (
	// FixKind tags the variant of a Fix.
	FixKind string

	// Fix describes a filesystem change that would resolve a diagnostic.
	// Fixes are descriptions only; steiger never applies them itself.
	// The implementations are Rename, CreateFile, CreateFolder, Delete and
	// ModifyFile.
	Fix interface {
		Kind() FixKind
		// Target is the path the fix operates on.
		Target() string
		// Describe is a one-line human description.
		Describe() string

		fix()
	}

	// Rename renames the file or folder at Path to NewName, keeping its parent.
	Rename struct {
		Path    string
		NewName string
	}

	// CreateFile creates a file at Path with Content.
	CreateFile struct {
		Path    string
		Content string
	}

	// CreateFolder creates an empty folder at Path.
	CreateFolder struct {
		Path string
	}

	// Delete removes the file or folder at Path.
	Delete struct {
		Path string
	}

	// ModifyFile replaces the content of the file at Path.
	ModifyFile struct {
		Path    string
		Content string
	}
)

func (Rename) fix()       {}
func (CreateFile) fix()   {}
func (CreateFolder) fix() {}
func (Delete) fix()       {}
func (ModifyFile) fix()   {}

// Kind implements Fix.
func (Rename) Kind() FixKind { return FixRename }

// Kind implements Fix.
func (CreateFile) Kind() FixKind { return FixCreateFile }

// Kind implements Fix.
func (CreateFolder) Kind() FixKind { return FixCreateFolder }

// Kind implements Fix.
func (Delete) Kind() FixKind { return FixDelete }

// Kind implements Fix.
func (ModifyFile) Kind() FixKind { return FixModifyFile }

// Target implements Fix.
func (f Rename) Target() string { return f.Path }

// Target implements Fix.
func (f CreateFile) Target() string { return f.Path }

// Target implements Fix.
func (f CreateFolder) Target() string { return f.Path }

// Target implements Fix.
func (f Delete) Target() string { return f.Path }

// Target implements Fix.
func (f ModifyFile) Target() string { return f.Path }

// Describe implements Fix.
func (f Rename) Describe() string {
	return fmt.Sprintf("rename %s to %s", f.Path, f.NewName)
}

// Describe implements Fix.
func (f CreateFile) Describe() string { return "create file " + f.Path }

// Describe implements Fix.
func (f CreateFolder) Describe() string { return "create folder " + f.Path }

// Describe implements Fix.
func (f Delete) Describe() string { return "delete " + f.Path }

// Describe implements Fix.
func (f ModifyFile) Describe() string { return "modify file " + f.Path }

// Destination returns the path the renamed node ends up at.
func (f Rename) Destination() string {
	return filepath.Join(filepath.Dir(f.Path), f.NewName)
}

// MarshalJSON encodes the fix with its type tag.
func (f Rename) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    FixKind `json:"type"`
		Path    string  `json:"path"`
		NewName string  `json:"newName"`
	}{f.Kind(), f.Path, f.NewName})
}

// MarshalJSON encodes the fix with its type tag.
func (f CreateFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    FixKind `json:"type"`
		Path    string  `json:"path"`
		Content string  `json:"content"`
	}{f.Kind(), f.Path, f.Content})
}

// MarshalJSON encodes the fix with its type tag.
func (f CreateFolder) MarshalJSON() ([]byte, error) {
	return marshalPathOnly(f.Kind(), f.Path)
}

// MarshalJSON encodes the fix with its type tag.
func (f Delete) MarshalJSON() ([]byte, error) {
	return marshalPathOnly(f.Kind(), f.Path)
}

// MarshalJSON encodes the fix with its type tag.
func (f ModifyFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    FixKind `json:"type"`
		Path    string  `json:"path"`
		Content string  `json:"content"`
	}{f.Kind(), f.Path, f.Content})
}

func marshalPathOnly(kind FixKind, path string) ([]byte, error) {
	return json.Marshal(struct {
		Type FixKind `json:"type"`
		Path string  `json:"path"`
	}{kind, path})
}

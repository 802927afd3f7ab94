// SPDX-License-Identifier: MPL-2.0

package fstree

import "strings"

// Format renders the children of root in the tree-description format read by
// Parse. The root itself is not printed.
func Format(root *Folder) string {
	var sb strings.Builder
	for _, child := range root.children {
		format(&sb, child, 0)
	}
	return sb.String()
}

func format(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat(" ", depth*indentWidth))
	switch n := n.(type) {
	case *File:
		sb.WriteString(FileGlyph + " " + n.Name() + "\n")
	case *Folder:
		sb.WriteString(FolderGlyph + " " + n.Name() + "\n")
		for _, child := range n.children {
			format(sb, child, depth+1)
		}
	}
}

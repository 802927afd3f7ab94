// SPDX-License-Identifier: MPL-2.0

// Package fstree provides the immutable File/Folder tree that every other part
// of steiger works on.
//
// A tree is produced either by scanning a directory on disk (Scan) or by
// parsing a textual tree description (Parse), which is mostly useful in tests:
//
//	📂 shared
//	  📂 ui
//	    📄 index.ts
//	📂 entities
//	  📂 user
//	    📂 @x
//	      📄 post.ts
//	    📄 index.ts
//
// Nodes are never mutated after construction. Children keep the order in
// which they were added, and that order drives the order of diagnostics.
package fstree

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"bytes"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DecodeJSONC decodes a JSON document that may contain comments and trailing
// commas (the tsconfig.json dialect) into a generic map.
func DecodeJSONC(data []byte, opts ...Option) (map[string]any, error) {
	options := applyOptions(opts)
	filename := options.name()

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	v := cuecontext.New().CompileBytes(stripBlockComments(data), cue.Filename(filename))
	if v.Err() != nil {
		return nil, FormatError(v.Err(), filename)
	}

	out := map[string]any{}
	if err := v.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}
	return out, nil
}

// stripBlockComments blanks /* */ comments outside of string literals. Line
// comments are valid CUE and stay. Newlines inside comments are kept so CUE
// positions still match the source.
func stripBlockComments(data []byte) []byte {
	if !bytes.Contains(data, []byte("/*")) {
		return data
	}

	out := make([]byte, 0, len(data))
	inString, inLine, inBlock := false, false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				inBlock = false
				out = append(out, ' ', ' ')
				i++
				continue
			}
			if c == '\n' {
				out = append(out, c)
			} else {
				out = append(out, ' ')
			}
		case inLine:
			out = append(out, c)
			if c == '\n' {
				inLine = false
			}
		case inString:
			out = append(out, c)
			if c == '\\' && i+1 < len(data) {
				out = append(out, data[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			inLine = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			inBlock = true
			out = append(out, ' ', ' ')
			i++
		default:
			out = append(out, c)
		}
	}
	return out
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests verify that Go struct JSON tags match CUE schema field names,
// so a renamed setting cannot silently stop being read.

// extractCUEFields returns the top-level regular fields of a CUE struct
// definition, mapped to whether the field is optional.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		fields[strings.TrimSuffix(sel.String(), "?")] = iter.IsOptional()
	}
	return fields
}

// extractGoJSONTags returns the JSON names of a struct's exported fields,
// mapped to whether the tag has omitempty. Fields tagged json:"-" are skipped.
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = strings.Contains(opts, "omitempty")
	}
	return fields
}

func lookupDefinition(t *testing.T, defPath string) cue.Value {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", defPath, def.Err())
	}
	return def
}

func TestConfigSchemaSync(t *testing.T) {
	t.Parallel()

	cueFields := extractCUEFields(t, lookupDefinition(t, "#Config"))
	goFields := extractGoJSONTags(t, reflect.TypeFor[Config]())

	for field, optional := range cueFields {
		omitempty, ok := goFields[field]
		if !ok {
			t.Errorf("CUE field %q not found in Config (missing JSON tag)", field)
			continue
		}
		if optional && !omitempty {
			t.Errorf("CUE field %q is optional but the Go field lacks omitempty", field)
		}
	}
	for field := range goFields {
		if _, ok := cueFields[field]; !ok {
			t.Errorf("Config JSON tag %q not found in #Config", field)
		}
	}
}

func TestConfigObjectSchemaFields(t *testing.T) {
	t.Parallel()

	fields := extractCUEFields(t, lookupDefinition(t, "#ConfigObject"))
	for _, want := range []string{"files", "ignores", "rules"} {
		if optional, ok := fields[want]; !ok || !optional {
			t.Errorf("#ConfigObject.%s: present=%v optional=%v, want optional field", want, ok, optional)
		}
	}
	if len(fields) != 3 {
		t.Errorf("#ConfigObject has %d fields, want 3: %v", len(fields), fields)
	}
}

func TestSchemaRuleEntries(t *testing.T) {
	t.Parallel()

	entry := lookupDefinition(t, "#RuleEntry")
	ctx := entry.Context()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"bare severity", `"warn"`, true},
		{"single element list", `["off"]`, true},
		{"severity with options", `["error", {maxSlices: 3}]`, true},
		{"unknown severity", `"fatal"`, false},
		{"options without severity", `[{maxSlices: 3}]`, false},
		{"three elements", `["warn", {}, {}]`, false},
		{"number", `2`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := entry.Unify(ctx.CompileString(tt.value)).Validate(cue.Concrete(true))
			if tt.valid && err != nil {
				t.Errorf("expected %s to be valid, got %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %s to be rejected", tt.value)
			}
		})
	}
}

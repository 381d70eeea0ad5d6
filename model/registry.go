package model

import (
	"fmt"
	"sort"

	"github.com/jacentio/lattice/internal/lexindex"
)

// normalizeFields builds the canonical field map for a model: caller fields
// validated and copied, identity and creation-timestamp fields filled in
// when absent. Pure; the caller's map is never retained or mutated.
func normalizeFields(fields map[string]Field) (map[string]Field, error) {
	out := make(map[string]Field, len(fields)+2)
	for name, f := range fields {
		if !lexindex.ValidName(name) {
			return nil, fmt.Errorf("%w: field name %q is empty or contains %q",
				ErrModelShape, name, string(lexindex.Separator))
		}
		out[name] = f
	}

	// Every model stores records under an id and keeps creation order
	// searchable, unless the caller supplied their own descriptors.
	if _, ok := out[FieldID]; !ok {
		out[FieldID] = Field{Seed: UUIDSeed}
	}
	if _, ok := out[FieldCreated]; !ok {
		out[FieldCreated] = Field{Seed: CreationSeed, Lexical: true}
	}

	return out, nil
}

// lexicalFields returns the sorted names of indexed fields, fixing command
// order inside compiled batches.
func lexicalFields(fields map[string]Field) []string {
	var names []string
	for name, f := range fields {
		if f.Lexical {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

package model

import (
	"fmt"
	"log/slog"

	"github.com/jacentio/lattice/internal/lexindex"
)

// Options configures a Model.
type Options struct {
	// Name is the namespace prefix for every key the model touches.
	// Required; must not contain the key separator.
	Name string

	// PreCreate runs on each record after seeding and validation, before
	// the create batch is compiled.
	PreCreate Hook

	// PreUpdate runs on each record after update validation, before the
	// current state is read.
	PreUpdate Hook

	// PostGet runs on each fetched record before it is returned. It is not
	// applied to the empty records standing in for unknown ids.
	PostGet Hook

	// SkipMissingRemove makes Remove ignore ids with no stored record
	// instead of failing the whole call with ErrNotFound.
	SkipMissingRemove bool

	// Logger receives operation-level debug logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// validate ensures the options are usable and fills defaults.
func (o *Options) validate() error {
	if !lexindex.ValidName(o.Name) {
		return fmt.Errorf("%w: model name %q is empty or contains %q",
			ErrModelShape, o.Name, string(lexindex.Separator))
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}

package model

import "errors"

var (
	// ErrModelShape is returned when model options or field descriptors are
	// unusable at construction time.
	ErrModelShape = errors.New("lattice: invalid model shape")

	// ErrValidation is returned when an input record fails a field
	// validator. No store access has happened.
	ErrValidation = errors.New("lattice: record failed validation")

	// ErrNotFound is returned when update or remove references an id with
	// no stored record. The whole call fails; nothing is written.
	ErrNotFound = errors.New("lattice: record not found")
)

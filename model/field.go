package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Names of the fields every model carries unless the caller overrides them.
const (
	FieldID      = "id"
	FieldCreated = "created"
)

// Record is a hash record: named string-valued fields. Stored records always
// contain FieldID.
type Record map[string]string

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Seed generates a default value for a field absent from caller input. It is
// never called for fields the caller provided.
type Seed func() string

// Validator checks a single field value. A nil Validator accepts anything.
// Absent fields are validated as the empty string at create time, so a
// Validator can enforce presence by rejecting "".
type Validator func(value string) error

// Hook transforms a record around a store operation. Hooks run once per
// record and must not retain the record after returning.
type Hook func(Record) (Record, error)

// Field describes one model field.
type Field struct {
	// Seed provides the default value when the field is absent from caller
	// input. Nil means no default.
	Seed Seed

	// Mutable allows Update to change the field. Non-mutable fields are
	// carried forward from the stored record, whatever the caller sends.
	Mutable bool

	// Lexical maintains a sorted-set index over the field, enabling prefix
	// search. The index entry moves in the same atomic batch as the hash
	// write.
	Lexical bool

	// Validate runs at create time. Nil accepts any value.
	Validate Validator

	// UpdateValidate runs at update time on fields present in the input.
	// Nil accepts any value.
	UpdateValidate Validator
}

// Const wraps a fixed value as a Seed.
func Const(v string) Seed {
	return func() string { return v }
}

// UUIDSeed is the default Seed for FieldID.
func UUIDSeed() string {
	return uuid.New().String()
}

var (
	creationMu   sync.Mutex
	lastCreation int64
)

// CreationSeed is the default Seed for FieldCreated: a strictly increasing
// nanosecond timestamp, zero-padded so lexical order equals creation order.
func CreationSeed() string {
	creationMu.Lock()
	defer creationMu.Unlock()
	now := time.Now().UnixNano()
	if now <= lastCreation {
		now = lastCreation + 1
	}
	lastCreation = now
	return fmt.Sprintf("%020d", now)
}

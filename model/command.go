package model

import "context"

// Op identifies a primitive store command.
type Op int

const (
	// OpHashSet replaces named fields of a hash record.
	OpHashSet Op = iota

	// OpHashGetAll fetches all fields of a hash record.
	OpHashGetAll

	// OpDelete deletes a hash record entirely.
	OpDelete

	// OpIndexAdd inserts a token into a lexical index.
	OpIndexAdd

	// OpIndexRemove removes an exact token from a lexical index.
	OpIndexRemove
)

// Command is one primitive store command inside a batch.
type Command struct {
	Op  Op
	Key string

	// Fields is the hash payload for OpHashSet.
	Fields map[string]string

	// Token is the index entry for OpIndexAdd and OpIndexRemove.
	Token string
}

// Result is the raw outcome of one executed Command, positionally aligned
// with the submitted batch.
type Result struct {
	// Hash holds the fields returned by OpHashGetAll; empty when the key
	// holds no record.
	Hash map[string]string

	// Ack is the affected-entry count reported for write commands.
	Ack int64
}

// Batch is a compiled, atomic unit of work: the commands to run plus the
// record ids the batch pertains to, in input order. Batches are transient;
// they are built, executed once and discarded.
type Batch struct {
	Commands []Command
	IDs      []string
}

// Store is the boundary to the hash store. Implementations must apply an
// ExecBatch all-or-nothing: a failed batch has changed nothing observable.
type Store interface {
	// ExecBatch runs every command as one indivisible unit and returns one
	// Result per command, in batch order.
	ExecBatch(ctx context.Context, cmds []Command) ([]Result, error)

	// RangeByLex returns index tokens within the given lexical bounds,
	// sorted. Bounds use the "[" inclusive-marker syntax.
	RangeByLex(ctx context.Context, key, min, max string) ([]string, error)
}

package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jacentio/lattice/internal/lexindex"
)

// Model is an immutable record type definition bound to a store. Build one
// per logical record type and reuse it for all operations.
//
// A Model is safe for concurrent use: it holds no mutable state after
// construction. The store guarantees atomicity only within a single command
// batch, and update/remove read the current state in one round trip and
// write in a second. Two concurrent calls touching the same id can therefore
// both read the same "current" state; the last writer's index delta wins,
// and an earlier retraction can remove an entry the later writer just added.
// Callers needing isolation must serialize per id externally.
type Model struct {
	name    string
	fields  map[string]Field
	lexical []string

	store Store

	preCreate Hook
	preUpdate Hook
	postGet   Hook

	skipMissingRemove bool
	logger            *slog.Logger
}

// New builds a Model from options and a field map. The field map is copied
// and completed with the default id and created fields (see Field docs);
// caller-supplied descriptors for those names win. Fails with ErrModelShape
// when the name or a field name is unusable.
func New(store Store, opts Options, fields map[string]Field) (*Model, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	normalized, err := normalizeFields(fields)
	if err != nil {
		return nil, err
	}
	return &Model{
		name:              opts.Name,
		fields:            normalized,
		lexical:           lexicalFields(normalized),
		store:             store,
		preCreate:         opts.PreCreate,
		preUpdate:         opts.PreUpdate,
		postGet:           opts.PostGet,
		skipMissingRemove: opts.SkipMissingRemove,
		logger:            opts.Logger,
	}, nil
}

// Name returns the model's key namespace.
func (m *Model) Name() string {
	return m.name
}

// validateCreate runs every field's create-time validator. Absent fields are
// checked as the empty string, letting a validator enforce presence.
func (m *Model) validateCreate(rec Record) error {
	for name, f := range m.fields {
		if f.Validate == nil {
			continue
		}
		if err := f.Validate(rec[name]); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, name, err)
		}
	}
	return nil
}

// validateUpdate runs update-time validators on the fields present in the
// input. Only id is required.
func (m *Model) validateUpdate(rec Record) error {
	if rec[FieldID] == "" {
		return fmt.Errorf("%w: update record has no %s field", ErrValidation, FieldID)
	}
	for name, f := range m.fields {
		if f.UpdateValidate == nil {
			continue
		}
		v, ok := rec[name]
		if !ok {
			continue
		}
		if err := f.UpdateValidate(v); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, name, err)
		}
	}
	return nil
}

// applyHook runs a hook over every record in place.
func applyHook(hook Hook, stage string, records []Record) error {
	if hook == nil {
		return nil
	}
	for i, rec := range records {
		out, err := hook(rec)
		if err != nil {
			return fmt.Errorf("lattice: %s hook: %w", stage, err)
		}
		records[i] = out
	}
	return nil
}

// Create seeds, validates and stores new records, returning their ids in
// input order. Validation failures happen before any store access. Hash
// writes and index insertions land in one atomic batch.
func (m *Model) Create(ctx context.Context, records ...Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	seeded := make([]Record, len(records))
	for i, rec := range records {
		s := m.seed(rec)
		if err := m.validateCreate(s); err != nil {
			return nil, err
		}
		seeded[i] = s
	}
	if err := applyHook(m.preCreate, "pre-create", seeded); err != nil {
		return nil, err
	}

	batch := m.compileCreate(seeded)
	if _, err := m.store.ExecBatch(ctx, batch.Commands); err != nil {
		return nil, err
	}

	m.logger.Debug("records created", "model", m.name, "count", len(batch.IDs))
	return batch.IDs, nil
}

// Get fetches records by id, one result per input id in input order. An
// unknown id yields an empty Record at its position, never an error.
func (m *Model) Get(ctx context.Context, ids ...string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]Command, len(ids))
	for i, id := range ids {
		cmds[i] = Command{Op: OpHashGetAll, Key: m.recordKey(id)}
	}
	results, err := m.store.ExecBatch(ctx, cmds)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(ids))
	for i, res := range results {
		rec := Record(res.Hash)
		if rec == nil {
			rec = Record{}
		}
		if m.postGet != nil && len(rec) > 0 {
			rec, err = m.postGet(rec)
			if err != nil {
				return nil, fmt.Errorf("lattice: post-get hook: %w", err)
			}
		}
		records[i] = rec
	}
	return records, nil
}

// Update replaces the mutable fields of existing records, keeping every
// lexical index in step within the same atomic batch. Each input record
// must carry its id; any id with no stored record fails the whole call with
// ErrNotFound before anything is written. Non-mutable fields in the input
// are ignored in favor of the stored values.
func (m *Model) Update(ctx context.Context, records ...Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	updates := make([]Record, len(records))
	for i, rec := range records {
		if err := m.validateUpdate(rec); err != nil {
			return nil, err
		}
		updates[i] = rec.clone()
	}
	if err := applyHook(m.preUpdate, "pre-update", updates); err != nil {
		return nil, err
	}

	ids := make([]string, len(updates))
	for i, rec := range updates {
		ids[i] = rec[FieldID]
	}

	current, missing, err := m.readCurrent(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, m.name, missing[0])
	}

	batch := m.compileUpdate(updates, current)
	if _, err := m.store.ExecBatch(ctx, batch.Commands); err != nil {
		return nil, err
	}

	m.logger.Debug("records updated", "model", m.name, "count", len(batch.IDs))
	return batch.IDs, nil
}

// Remove deletes records and retracts their index entries in one atomic
// batch, returning the store's per-record delete acknowledgements. By
// default an id with no stored record fails the whole call with ErrNotFound;
// Options.SkipMissingRemove downgrades that to skipping the id.
func (m *Model) Remove(ctx context.Context, ids ...string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	current, missing, err := m.readCurrent(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 && !m.skipMissingRemove {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, m.name, missing[0])
	}

	present := current[:0]
	for _, rec := range current {
		if rec != nil {
			present = append(present, rec)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	cmds := m.compileRemove(present)
	results, err := m.store.ExecBatch(ctx, cmds)
	if err != nil {
		return nil, err
	}

	// Index retractions are bookkeeping; only the hash deletes are the
	// caller's acknowledgement.
	acks := make([]int64, 0, len(present))
	for i, cmd := range cmds {
		if cmd.Op == OpDelete {
			acks = append(acks, results[i].Ack)
		}
	}
	m.logger.Debug("records removed", "model", m.name, "count", len(acks))
	return acks, nil
}

// readCurrent fetches the stored state for ids in one batch. The returned
// slice is positionally aligned with ids; entries for absent records are nil
// and their ids are collected in missing.
func (m *Model) readCurrent(ctx context.Context, ids []string) (current []Record, missing []string, err error) {
	cmds := make([]Command, len(ids))
	for i, id := range ids {
		cmds[i] = Command{Op: OpHashGetAll, Key: m.recordKey(id)}
	}
	results, err := m.store.ExecBatch(ctx, cmds)
	if err != nil {
		return nil, nil, err
	}

	current = make([]Record, len(ids))
	for i, res := range results {
		if len(res.Hash) == 0 {
			missing = append(missing, ids[i])
			continue
		}
		current[i] = Record(res.Hash)
	}
	return current, missing, nil
}

// Query describes a prefix search over one lexical field. Term matching is
// prefix-only against the normalized field value (case-folded, whitespace
// and separator stripped).
type Query struct {
	Field string
	Term  string
}

// Search returns the ids of records whose indexed field value starts with
// the term. An unknown or unindexed field matches nothing and returns an
// empty result, not an error.
func (m *Model) Search(ctx context.Context, q Query) ([]string, error) {
	key, min, max := m.compileSearch(q.Field, q.Term)
	tokens, err := m.store.RangeByLex(ctx, key, min, max)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := lexindex.DecodeToken(tok); ok {
			ids = append(ids, id)
		}
	}
	m.logger.Debug("search completed", "model", m.name, "field", q.Field, "matches", len(ids))
	return ids, nil
}

// SearchRecords runs Search and fetches the matching records through the Get
// pipeline, post-get hook included.
func (m *Model) SearchRecords(ctx context.Context, q Query) ([]Record, error) {
	ids, err := m.Search(ctx, q)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return m.Get(ctx, ids...)
}

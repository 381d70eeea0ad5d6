package model

import (
	"github.com/jacentio/lattice/internal/lexindex"
)

// The compile functions are pure: given records they return the primitive
// command sequence establishing the new state, hash write and index delta in
// one batch so the two can never be observed disagreeing.

func (m *Model) recordKey(id string) string {
	return lexindex.RecordKey(m.name, id)
}

func (m *Model) indexKey(field string) string {
	return lexindex.IndexKey(m.name, field)
}

// seed returns a copy of rec with model defaults applied to absent fields.
// Fields the caller provided are never overwritten.
func (m *Model) seed(rec Record) Record {
	out := rec.clone()
	for name, f := range m.fields {
		if f.Seed == nil {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = f.Seed()
		}
	}
	return out
}

// compileCreate emits, per record, one hash write plus one index insertion
// for every lexical field present and non-empty. Records are assumed seeded
// and validated.
func (m *Model) compileCreate(records []Record) Batch {
	b := Batch{
		Commands: make([]Command, 0, len(records)*(1+len(m.lexical))),
		IDs:      make([]string, 0, len(records)),
	}
	for _, rec := range records {
		id := rec[FieldID]
		b.IDs = append(b.IDs, id)
		b.Commands = append(b.Commands, Command{
			Op:     OpHashSet,
			Key:    m.recordKey(id),
			Fields: rec,
		})
		for _, name := range m.lexical {
			if v, ok := rec[name]; ok && v != "" {
				b.Commands = append(b.Commands, Command{
					Op:    OpIndexAdd,
					Key:   m.indexKey(name),
					Token: lexindex.EncodeToken(v, id),
				})
			}
		}
	}
	return b
}

// compileUpdate pairs new records with the stored state positionally
// (aligned on id) and emits the hash write plus the index delta: retract
// entries whose value changed or disappeared, insert entries for the new
// values. An unchanged token emits nothing for that field. Non-mutable
// fields are taken from the stored record regardless of caller input.
func (m *Model) compileUpdate(records, current []Record) Batch {
	b := Batch{
		Commands: make([]Command, 0, len(records)*(1+len(m.lexical))),
		IDs:      make([]string, 0, len(records)),
	}
	for i, rec := range records {
		old := current[i]
		merged := rec.clone()
		for name, f := range m.fields {
			if f.Mutable {
				continue
			}
			if ov, ok := old[name]; ok {
				merged[name] = ov
			} else {
				delete(merged, name)
			}
		}

		id := old[FieldID]
		b.IDs = append(b.IDs, id)
		b.Commands = append(b.Commands, Command{
			Op:     OpHashSet,
			Key:    m.recordKey(id),
			Fields: merged,
		})

		for _, name := range m.lexical {
			oldVal, hadOld := old[name]
			newVal, hasNew := merged[name]
			hadOld = hadOld && oldVal != ""
			hasNew = hasNew && newVal != ""

			var oldTok, newTok string
			if hadOld {
				oldTok = lexindex.EncodeToken(oldVal, id)
			}
			if hasNew {
				newTok = lexindex.EncodeToken(newVal, id)
			}
			if hadOld && hasNew && oldTok == newTok {
				continue
			}
			// Retraction precedes insertion so an identical token can
			// never be retracted after being re-added.
			if hadOld {
				b.Commands = append(b.Commands, Command{
					Op:    OpIndexRemove,
					Key:   m.indexKey(name),
					Token: oldTok,
				})
			}
			if hasNew {
				b.Commands = append(b.Commands, Command{
					Op:    OpIndexAdd,
					Key:   m.indexKey(name),
					Token: newTok,
				})
			}
		}
	}
	return b
}

// compileRemove emits, per stored record, one hash delete plus one index
// retraction for every lexical field present and non-empty on the stored
// state.
func (m *Model) compileRemove(current []Record) []Command {
	cmds := make([]Command, 0, len(current)*(1+len(m.lexical)))
	for _, rec := range current {
		id := rec[FieldID]
		cmds = append(cmds, Command{
			Op:  OpDelete,
			Key: m.recordKey(id),
		})
		for _, name := range m.lexical {
			if v, ok := rec[name]; ok && v != "" {
				cmds = append(cmds, Command{
					Op:    OpIndexRemove,
					Key:   m.indexKey(name),
					Token: lexindex.EncodeToken(v, id),
				})
			}
		}
	}
	return cmds
}

// compileSearch returns the index key and prefix bounds for a term. Unknown
// or unindexed fields compile to a key no command ever wrote, so the range
// matches nothing; that is deliberate, not an error.
func (m *Model) compileSearch(field, term string) (key, min, max string) {
	key = m.indexKey(field)
	min, max = lexindex.PrefixRange(term)
	return key, min, max
}

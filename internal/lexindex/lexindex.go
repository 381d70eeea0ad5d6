// Package lexindex maps model names, record ids and field values to store
// keys and sortable index tokens.
package lexindex

import (
	"strings"
	"unicode"
)

// Separator is the byte joining key and token segments. Model and field
// names must not contain it; Normalize strips it from field values so a
// token always holds exactly one value/id boundary at its first occurrence.
const Separator = ':'

// RangeSentinel is the upper-bound byte for prefix range queries. It sorts
// after every byte Normalize can produce, so [term, term+sentinel] covers
// exactly the tokens whose normalized value starts with term.
const RangeSentinel = "\xff"

// RecordKey returns the hash key holding the record with the given id.
func RecordKey(model, id string) string {
	return model + string(Separator) + id
}

// IndexKey returns the sorted-set key holding the lexical index for a field.
// The "index" sub-namespace keeps index keys disjoint from record keys.
func IndexKey(model, field string) string {
	return model + string(Separator) + "index" + string(Separator) + field
}

// Normalize folds a field value for index storage: lowercased, with all
// whitespace and separator bytes removed. Total over any input string.
func Normalize(value string) string {
	return strings.Map(func(r rune) rune {
		if r == Separator || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, value)
}

// EncodeToken builds the index token for a field value and record id.
func EncodeToken(value, id string) string {
	return Normalize(value) + string(Separator) + id
}

// DecodeToken recovers the record id from an index token: everything after
// the first separator. Returns false for tokens with no separator.
func DecodeToken(token string) (string, bool) {
	i := strings.IndexByte(token, Separator)
	if i < 0 {
		return "", false
	}
	return token[i+1:], true
}

// PrefixRange returns the ZRANGEBYLEX bounds selecting every token whose
// normalized value starts with term. Both bounds carry the inclusive "["
// marker; the sentinel byte closes the range past any real token.
func PrefixRange(term string) (min, max string) {
	t := Normalize(term)
	return "[" + t, "[" + t + RangeSentinel
}

// ValidName reports whether a model or field name can be embedded in keys.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsRune(name, Separator)
}

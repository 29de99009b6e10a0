// Package record holds a single in-memory row and the helpers that derive
// the identifiers and cell keys the storage engines key their writes on.
package record

import (
	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/schema"
)

// Record is one row bound for (or read from) a table: a field-to-value
// valuation. A nil value denotes SQL-style null.
type Record struct {
	Table  schema.Table
	Values map[schema.Field]*string
}

// Value returns the value of a field and whether the field was present in
// the record at all (absent and explicitly-null are distinguished).
func (r Record) Value(f schema.Field) (*string, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// valuation projects the record onto the given fields, keyed by field name
// for keypolicy.Policy.Identify.
func (r Record) valuation(fields []schema.Field) map[string]*string {
	out := make(map[string]*string, len(fields))
	for _, f := range fields {
		out[f.Name] = r.Values[f]
	}
	return out
}

// PrimaryKeyIdentifier derives the table-index identifier for this record:
// the canonicalized valuation of its primary-key fields.
func (r Record) PrimaryKeyIdentifier(td schema.TableDefinition, policy keypolicy.Policy) string {
	return policy.Identify(r.valuation(td.PrimaryKeyFields()))
}

// DeterminantIdentifier derives the FD-index identifier for one functional
// dependency: the canonicalized valuation of its determinant fields.
func (r Record) DeterminantIdentifier(fd schema.FunctionalDependency, policy keypolicy.Policy) string {
	return policy.Identify(r.valuation(fd.Determinants))
}

// CellKey returns the key holding this record's value for the given field.
func (r Record) CellKey(td schema.TableDefinition, f schema.Field, policy keypolicy.Policy) string {
	return schema.CellKey(td.Table.Name, f.Name, r.PrimaryKeyIdentifier(td, policy))
}

// Package condition defines the per-table, per-field predicates a Select
// can push down during field fetch, before a row is ever assembled.
package condition

import "github.com/relcore/relcore/internal/schema"

// Condition is a predicate over a single field's value, scoped to one table
// occurrence (so a self-join can apply different predicates to the same
// underlying field under different aliases).
type Condition interface {
	Table() schema.Table
	Field() schema.Field
	Matches(value *string) bool
}

// Equals matches when the field's value equals Literal (nil Literal
// matches null).
type Equals struct {
	Of      schema.Table
	On      schema.Field
	Literal *string
}

func (e Equals) Table() schema.Table { return e.Of }
func (e Equals) Field() schema.Field { return e.On }

func (e Equals) Matches(value *string) bool {
	if e.Literal == nil || value == nil {
		return e.Literal == nil && value == nil
	}
	return *e.Literal == *value
}

// In matches when the field's value equals any of Literals.
type In struct {
	Of       schema.Table
	On       schema.Field
	Literals []*string
}

func (i In) Table() schema.Table { return i.Of }
func (i In) Field() schema.Field { return i.On }

func (i In) Matches(value *string) bool {
	for _, lit := range i.Literals {
		if (Equals{Of: i.Of, On: i.On, Literal: lit}).Matches(value) {
			return true
		}
	}
	return false
}

// Not negates another condition; it is scoped to the same table and field
// as its inner condition.
type Not struct {
	Inner Condition
}

func (n Not) Table() schema.Table        { return n.Inner.Table() }
func (n Not) Field() schema.Field        { return n.Inner.Field() }
func (n Not) Matches(value *string) bool { return !n.Inner.Matches(value) }

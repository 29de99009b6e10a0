// Package query implements projection-select over one or more tables: a
// per-table scan with pushed-down predicates, an equi-join across tables
// (a primary-key fast path, or a nested-loop join otherwise), and a final
// projection onto the requested output fields.
package query

import (
	"context"
	"iter"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/condition"
	"github.com/relcore/relcore/internal/iterate"
	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

// FieldRef names a field of a specific table occurrence within a query
// (the table's Identity, not necessarily its underlying name).
type FieldRef struct {
	Table schema.Table
	Field schema.Field
}

// JoinStatement binds a list of fields of already-joined tables
// (BaseFields) to an equal-length list of fields of TargetTable
// (TargetFields), zipped position-wise. A JoinStatement with no fields at
// all joins TargetTable as a Cartesian product.
type JoinStatement struct {
	BaseFields   []FieldRef
	TargetTable  schema.Table
	TargetFields []schema.Field
}

// Selector describes one projection-select: the fields to project per
// table occurrence, the table the scan starts from, the join statements
// that bring in every other table occurrence (in evaluation order), and
// the predicates pushed down per table.
type Selector struct {
	SelectFields map[schema.Table][]schema.Field
	FromTable    schema.Table
	Joins        []JoinStatement
	Conditions   []condition.Condition
}

// Row is one projected output record: the requested fields, keyed by
// table occurrence and field.
type Row struct {
	Values map[FieldRef]*string
}

// Executor runs Selectors against a catalog and a backing store.
type Executor struct {
	rdb     *redis.Client
	catalog *schema.Catalog
	policy  keypolicy.Policy
}

// NewExecutor builds an Executor bound to the given catalog and policy.
func NewExecutor(rdb *redis.Client, catalog *schema.Catalog, policy keypolicy.Policy) *Executor {
	return &Executor{rdb: rdb, catalog: catalog, policy: policy}
}

// tableRow is one surviving record of a single table occurrence: the PK
// identifier it was scanned (or fetched) at, plus every field value
// fetched for it.
type tableRow struct {
	pkID   string
	values map[schema.Field]*string
}

// Select evaluates sel eagerly and returns every projected output row.
func (e *Executor) Select(ctx context.Context, sel Selector) ([]Row, error) {
	condsByTable := make(map[schema.Table][]condition.Condition, len(sel.Conditions))
	for _, c := range sel.Conditions {
		condsByTable[c.Table()] = append(condsByTable[c.Table()], c)
	}

	baseRows, err := e.scanTable(ctx, sel.FromTable, condsByTable[sel.FromTable])
	if err != nil {
		return nil, err
	}
	combos := make([]map[schema.Table]tableRow, 0, len(baseRows))
	for _, r := range baseRows {
		combos = append(combos, map[schema.Table]tableRow{sel.FromTable: r})
	}

	for _, j := range sel.Joins {
		td, ok := e.catalog.TableByName(j.TargetTable.Name)
		if !ok {
			return nil, relerr.InvalidDescriptor(j.TargetTable.Name)
		}

		if isPKFastPath(td, j.TargetFields) {
			combos, err = e.pkJoin(ctx, combos, j, td, condsByTable[j.TargetTable])
			if err != nil {
				return nil, err
			}
			continue
		}

		targetRows, err := e.scanTable(ctx, j.TargetTable, condsByTable[j.TargetTable])
		if err != nil {
			return nil, err
		}
		combos = nestedLoopJoin(combos, j, targetRows)
	}

	return e.project(sel.SelectFields, combos), nil
}

// SelectSeq is Select's output surfaced as a lazy-looking range-over-func
// sequence. The underlying evaluation is still eager; this exists purely
// as an ergonomic streaming-style API for callers that want to `for range`
// over results without collecting a slice themselves.
func (e *Executor) SelectSeq(ctx context.Context, sel Selector) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := e.Select(ctx, sel)
		if err != nil {
			yield(Row{}, err)
			return
		}
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// scanTable enumerates every live record of table, fetching each field and
// dropping a record as soon as a pushed-down predicate rejects it (without
// fetching the remaining fields).
func (e *Executor) scanTable(ctx context.Context, table schema.Table, conds []condition.Condition) ([]tableRow, error) {
	td, ok := e.catalog.TableByName(table.Name)
	if !ok {
		return nil, relerr.InvalidDescriptor(table.Name)
	}

	ids, err := iterate.PKIdentifiers(ctx, e.rdb, td, e.catalog.Config.ListRecordsType)
	if err != nil {
		return nil, err
	}

	condsByField := make(map[schema.Field][]condition.Condition, len(conds))
	for _, c := range conds {
		condsByField[c.Field()] = append(condsByField[c.Field()], c)
	}

	rows := make([]tableRow, 0, len(ids))
outer:
	for _, pkID := range ids {
		values := make(map[schema.Field]*string, len(td.AllFields()))
		for _, f := range td.AllFields() {
			v, err := getCell(ctx, e.rdb, schema.CellKey(td.Table.Name, f.Name, pkID))
			if err != nil {
				return nil, err
			}
			values[f] = v
			for _, c := range condsByField[f] {
				if !c.Matches(v) {
					continue outer
				}
			}
		}
		rows = append(rows, tableRow{pkID: pkID, values: values})
	}
	return rows, nil
}

func getCell(ctx context.Context, rdb *redis.Client, key string) (*string, error) {
	v, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, relerr.WrapBackend("read cell", err)
	}
	return &v, nil
}

// project builds the final Rows from the joined per-table value sets.
func (e *Executor) project(selectFields map[schema.Table][]schema.Field, combos []map[schema.Table]tableRow) []Row {
	rows := make([]Row, 0, len(combos))
	for _, combo := range combos {
		values := make(map[FieldRef]*string)
		for table, fields := range selectFields {
			tr, ok := combo[table]
			if !ok {
				continue
			}
			for _, f := range fields {
				values[FieldRef{Table: table, Field: f}] = tr.values[f]
			}
		}
		rows = append(rows, Row{Values: values})
	}
	return rows
}

package query

import (
	"context"
	"sort"
	"strings"

	"github.com/relcore/relcore/internal/condition"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

// nullMarker stands in for a null field value when grouping rows by a
// join key's raw value (a *string can't be a map key).
const nullMarker = "\x00relcore:join-null\x00"

// keySeparator joins the per-field components of a composite join key.
// Field values never contain this control character, so composite keys
// stay unambiguous.
const keySeparator = "\x1f"

func valueKey(v *string) string {
	if v == nil {
		return nullMarker
	}
	return *v
}

func compositeKey(values []*string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = valueKey(v)
	}
	return strings.Join(parts, keySeparator)
}

// isPKFastPath reports whether targetFields is exactly the primary-key
// field set of td (same multiset, any order) — the case where a join can
// be answered by a direct cell fetch at the computed PK identifier,
// without ever scanning td.
func isPKFastPath(td schema.TableDefinition, targetFields []schema.Field) bool {
	pk := td.PrimaryKeyFields()
	if len(pk) != len(targetFields) {
		return false
	}
	want := make([]string, len(pk))
	for i, f := range pk {
		want[i] = f.Name
	}
	got := make([]string, len(targetFields))
	for i, f := range targetFields {
		got[i] = f.Name
	}
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func cloneCombo(combo map[schema.Table]tableRow) map[schema.Table]tableRow {
	out := make(map[schema.Table]tableRow, len(combo)+1)
	for k, v := range combo {
		out[k] = v
	}
	return out
}

// pkJoin answers a JoinStatement whose target fields are exactly the
// target table's primary key: for each accumulated combination, it zips
// BaseFields to TargetFields to build the target row's PK valuation,
// computes the PK identifier, and fetches the row directly by GET — no
// scan of the target table occurs. Predicates declared on the target table
// are evaluated as a post-fetch filter, after the direct fetch, so the fast
// path still avoids ever scanning the target table.
func (e *Executor) pkJoin(ctx context.Context, combos []map[schema.Table]tableRow, j JoinStatement, td schema.TableDefinition, conds []condition.Condition) ([]map[schema.Table]tableRow, error) {
	next := make([]map[schema.Table]tableRow, 0, len(combos))

	for _, combo := range combos {
		valuation := make(map[string]*string, len(j.TargetFields))
		ok := true
		for i, base := range j.BaseFields {
			baseRow, present := combo[base.Table]
			if !present {
				ok = false
				break
			}
			valuation[j.TargetFields[i].Name] = baseRow.values[base.Field]
		}
		if !ok {
			continue
		}

		pkID := e.policy.Identify(valuation)

		member, err := e.rdb.SIsMember(ctx, schema.TableKeysKey(td.Table.Name), pkID).Result()
		if err != nil {
			return nil, relerr.WrapBackend("pk join membership check", err)
		}
		if !member {
			continue
		}

		values := make(map[schema.Field]*string, len(td.AllFields()))
		for _, f := range td.AllFields() {
			v, err := getCell(ctx, e.rdb, schema.CellKey(td.Table.Name, f.Name, pkID))
			if err != nil {
				return nil, err
			}
			values[f] = v
		}

		matched := true
		for _, c := range conds {
			if !c.Matches(values[c.Field()]) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		merged := cloneCombo(combo)
		merged[j.TargetTable] = tableRow{pkID: pkID, values: values}
		next = append(next, merged)
	}

	return next, nil
}

// nestedLoopJoin answers a JoinStatement by grouping the already-scanned
// target rows by their composite TargetFields value and probing that
// grouping for every accumulated combination. Zero-length BaseFields and
// TargetFields produce the Cartesian product with every target row.
func nestedLoopJoin(combos []map[schema.Table]tableRow, j JoinStatement, targetRows []tableRow) []map[schema.Table]tableRow {
	if len(j.BaseFields) == 0 {
		return cartesianProduct(combos, j.TargetTable, targetRows)
	}

	grouped := make(map[string][]tableRow, len(targetRows))
	for _, r := range targetRows {
		values := make([]*string, len(j.TargetFields))
		for i, f := range j.TargetFields {
			values[i] = r.values[f]
		}
		key := compositeKey(values)
		grouped[key] = append(grouped[key], r)
	}

	var next []map[schema.Table]tableRow
	for _, combo := range combos {
		values := make([]*string, len(j.BaseFields))
		ok := true
		for i, base := range j.BaseFields {
			baseRow, present := combo[base.Table]
			if !present {
				ok = false
				break
			}
			values[i] = baseRow.values[base.Field]
		}
		if !ok {
			continue
		}
		key := compositeKey(values)
		for _, r := range grouped[key] {
			merged := cloneCombo(combo)
			merged[j.TargetTable] = r
			next = append(next, merged)
		}
	}
	return next
}

func cartesianProduct(combos []map[schema.Table]tableRow, table schema.Table, rows []tableRow) []map[schema.Table]tableRow {
	next := make([]map[schema.Table]tableRow, 0, len(combos)*len(rows))
	for _, combo := range combos {
		for _, r := range rows {
			merged := cloneCombo(combo)
			merged[table] = r
			next = append(next, merged)
		}
	}
	return next
}

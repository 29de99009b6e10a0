// Package insert implements the three interchangeable insert strategies:
// Simple (no atomicity), Transactional (optimistic WATCH/MULTI/EXEC with
// retry), and ServerScript (a single atomic Lua script). All three enforce
// the same functional-dependency invariant before any cell is written.
package insert

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/retry"
	"github.com/relcore/relcore/internal/schema"
)

// Inserter writes one record into a table, enforcing its functional
// dependencies.
type Inserter interface {
	Insert(ctx context.Context, td schema.TableDefinition, rec record.Record) error
}

// New dispatches to the Inserter for the given strategy. Unknown types fall
// back to Simple.
func New(kind schema.InsertType, rdb *redis.Client, policy keypolicy.Policy, retries *retry.Counter, retryPolicy retry.Policy) Inserter {
	switch kind {
	case schema.InsertTransactional:
		return &transactional{rdb: rdb, policy: policy, retries: retries, retryPolicy: retryPolicy}
	case schema.InsertServerScript:
		return &serverScript{rdb: rdb, policy: policy}
	default:
		return &simple{rdb: rdb, policy: policy}
	}
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// checkDependencies verifies that inserting rec would not contradict any
// functional dependency already recorded in the store. Every field of the
// table is checked, regardless of whether rec supplies it: an absent field
// becomes a stored null exactly like an explicit nil value, and a null is
// subject to the same FD agreement as any other value. onMember, when
// non-nil, is called with every existing cell key read while validating —
// callers running inside an optimistic transaction use this to extend the
// watch set to cover the values the check actually read.
func checkDependencies(ctx context.Context, cmd redis.Cmdable, td schema.TableDefinition, rec record.Record, policy keypolicy.Policy, onMember func(cellKey string)) error {
	for dependent, fds := range td.FDs {
		value, _ := rec.Value(dependent)
		for _, fd := range fds {
			detID := rec.DeterminantIdentifier(fd, policy)
			idxKey := schema.FDIndexKey(fd, detID)
			members, err := cmd.SMembers(ctx, idxKey).Result()
			if err != nil {
				return relerr.WrapBackend("check dependency index", err)
			}
			for _, cellKey := range members {
				if onMember != nil {
					onMember(cellKey)
				}
				existing, err := getCell(ctx, cmd, cellKey)
				if err != nil {
					return err
				}
				if !equalStringPtr(value, existing) {
					return relerr.DependencyBroken(dependent.Name)
				}
			}
		}
	}
	return nil
}

func getCell(ctx context.Context, cmd redis.Cmdable, key string) (*string, error) {
	v, err := cmd.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, relerr.WrapBackend("read cell", err)
	}
	return &v, nil
}

// writeCells persists every non-null field value rec supplies. Null fields
// have no cell key: a read of an absent cell yields null.
func writeCells(ctx context.Context, cmd redis.Cmdable, td schema.TableDefinition, rec record.Record, policy keypolicy.Policy) error {
	for _, f := range td.AllFields() {
		v, present := rec.Value(f)
		if !present || v == nil {
			continue
		}
		if err := cmd.Set(ctx, rec.CellKey(td, f, policy), *v, 0).Err(); err != nil {
			return relerr.WrapBackend("write cell", err)
		}
	}
	return nil
}

// updateIndexes registers rec's primary key in the table index and, for
// every dependent field of the table, its cell key in the matching FD
// index — including a dependent field rec leaves null, so a later insert
// sharing the same determinant identifier still finds it via SMEMBERS and
// is checked against it, instead of the index silently having no record of
// that equivalence class member.
func updateIndexes(ctx context.Context, cmd redis.Cmdable, td schema.TableDefinition, rec record.Record, policy keypolicy.Policy) error {
	pkID := rec.PrimaryKeyIdentifier(td, policy)
	if err := cmd.SAdd(ctx, schema.TableKeysKey(td.Table.Name), pkID).Err(); err != nil {
		return relerr.WrapBackend("update table index", err)
	}
	for dependent, fds := range td.FDs {
		cellKey := rec.CellKey(td, dependent, policy)
		for _, fd := range fds {
			detID := rec.DeterminantIdentifier(fd, policy)
			if err := cmd.SAdd(ctx, schema.FDIndexKey(fd, detID), cellKey).Err(); err != nil {
				return relerr.WrapBackend("update dependency index", err)
			}
		}
	}
	return nil
}

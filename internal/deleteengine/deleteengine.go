// Package deleteengine implements the two interchangeable delete
// strategies: Simple (TxPipelined SREM/DEL/SREM) and ServerScript (one
// atomic Lua script). Both remove a record's cells, its table-index
// membership, and its membership in every FD index it had joined.
package deleteengine

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

// Deleter removes the record identified by pk's primary-key fields from the
// table. Fields of pk other than the primary key are ignored.
type Deleter interface {
	Delete(ctx context.Context, td schema.TableDefinition, pk record.Record) error
}

// New dispatches to the Deleter for the given strategy. Unknown types fall
// back to Simple.
func New(kind schema.DeleteType, rdb *redis.Client, policy keypolicy.Policy) Deleter {
	if kind == schema.DeleteServerScript {
		return &serverScript{rdb: rdb, policy: policy}
	}
	return &simple{rdb: rdb, policy: policy}
}

// loadValues reads the current stored value of every field of the record
// identified by pkID, so callers can recompute the FD-index keys it
// belongs to before its cells are removed.
func loadValues(ctx context.Context, cmd redis.Cmdable, td schema.TableDefinition, pkID string) (map[schema.Field]*string, error) {
	values := make(map[schema.Field]*string, len(td.AllFields()))
	for _, f := range td.AllFields() {
		v, err := getCell(ctx, cmd, schema.CellKey(td.Table.Name, f.Name, pkID))
		if err != nil {
			return nil, err
		}
		values[f] = v
	}
	return values, nil
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

// dependencyIndexKeysForStored recomputes, from the record's currently
// stored values, the FD-index key each dependent field's cell is
// registered under.
func dependencyIndexKeysForStored(td schema.TableDefinition, values map[schema.Field]*string, policy keypolicy.Policy) map[schema.Field][]string {
	stored := record.Record{Table: td.Table, Values: values}
	out := make(map[schema.Field][]string, len(td.FDs))
	for dependent, fds := range td.FDs {
		for _, fd := range fds {
			out[dependent] = append(out[dependent], schema.FDIndexKey(fd, stored.DeterminantIdentifier(fd, policy)))
		}
	}
	return out
}

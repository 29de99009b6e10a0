// Package iterate enumerates the primary-key identifiers of every live
// record of a table, via one of three interchangeable strategies: SET
// (read the table index directly), SCAN (cursor-walk one field's cell-key
// prefix), or KEYS (the same prefix, fetched in one round trip).
package iterate

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

// PKIdentifiers returns the PK identifiers of every live record of td,
// enumerated via the given strategy. Unknown strategies fall back to Set.
func PKIdentifiers(ctx context.Context, rdb *redis.Client, td schema.TableDefinition, strategy schema.ListRecordsType) ([]string, error) {
	switch strategy {
	case schema.ListRecordsScan:
		return scanField(ctx, rdb, td)
	case schema.ListRecordsKeys:
		return keysField(ctx, rdb, td)
	default:
		return setMembers(ctx, rdb, td)
	}
}

func setMembers(ctx context.Context, rdb *redis.Client, td schema.TableDefinition) ([]string, error) {
	ids, err := rdb.SMembers(ctx, schema.TableKeysKey(td.Table.Name)).Result()
	if err != nil {
		return nil, relerr.WrapBackend("list table index", err)
	}
	return ids, nil
}

// scanTargetField picks the single field whose cell-key prefix KEYS/SCAN
// restrict themselves to: the first primary-key field, so every live
// record is guaranteed to have a cell under that prefix (a record may omit
// a non-key field entirely if its value is null, but never a key field).
func scanTargetField(td schema.TableDefinition) schema.Field {
	return td.PrimaryKeyFields()[0]
}

func scanField(ctx context.Context, rdb *redis.Client, td schema.TableDefinition) ([]string, error) {
	field := scanTargetField(td)
	prefix := schema.FieldScanPrefix(td.Table.Name, field.Name)

	var ids []string
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, relerr.WrapBackend("scan field prefix", err)
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

func keysField(ctx context.Context, rdb *redis.Client, td schema.TableDefinition) ([]string, error) {
	field := scanTargetField(td)
	prefix := schema.FieldScanPrefix(td.Table.Name, field.Name)

	keys, err := rdb.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, relerr.WrapBackend("list field prefix", err)
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = strings.TrimPrefix(k, prefix)
	}
	return ids, nil
}

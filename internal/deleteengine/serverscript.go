package deleteengine

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

type serverScript struct {
	rdb    *redis.Client
	policy keypolicy.Policy
}

func (s *serverScript) Delete(ctx context.Context, td schema.TableDefinition, pk record.Record) error {
	pkID := pk.PrimaryKeyIdentifier(td, s.policy)

	values, err := loadValues(ctx, s.rdb, td, pkID)
	if err != nil {
		return err
	}
	idxKeysByField := dependencyIndexKeysForStored(td, values, s.policy)

	fields := td.AllFields()
	keys := make([]string, 0, 1+len(fields))
	keys = append(keys, schema.TableKeysKey(td.Table.Name))
	for _, f := range fields {
		keys = append(keys, schema.CellKey(td.Table.Name, f.Name, pkID))
	}
	for _, f := range fields {
		keys = append(keys, idxKeysByField[f]...)
	}

	argv := make([]interface{}, 0, 2+len(fields))
	argv = append(argv, pkID, len(fields))
	for _, f := range fields {
		argv = append(argv, len(idxKeysByField[f]))
	}

	if err := deleteScript.Run(ctx, s.rdb, keys, argv...).Err(); err != nil {
		return relerr.WrapBackend("run delete script", err)
	}
	return nil
}

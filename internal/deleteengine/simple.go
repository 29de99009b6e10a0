package deleteengine

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

type simple struct {
	rdb    *redis.Client
	policy keypolicy.Policy
}

func (s *simple) Delete(ctx context.Context, td schema.TableDefinition, pk record.Record) error {
	pkID := pk.PrimaryKeyIdentifier(td, s.policy)

	values, err := loadValues(ctx, s.rdb, td, pkID)
	if err != nil {
		return err
	}
	idxKeysByField := dependencyIndexKeysForStored(td, values, s.policy)

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for dependent, idxKeys := range idxKeysByField {
			cellKey := schema.CellKey(td.Table.Name, dependent.Name, pkID)
			for _, idxKey := range idxKeys {
				pipe.SRem(ctx, idxKey, cellKey)
			}
		}
		for _, f := range td.AllFields() {
			pipe.Del(ctx, schema.CellKey(td.Table.Name, f.Name, pkID))
		}
		pipe.SRem(ctx, schema.TableKeysKey(td.Table.Name), pkID)
		return nil
	})
	if err != nil {
		return relerr.WrapBackend("delete record", err)
	}
	return nil
}

package insert

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/schema"
)

// serverScript performs the FD check and both write phases atomically by
// delegating to insertScript, which go-redis transparently runs via
// EVALSHA with an EVAL fallback on NOSCRIPT.
type serverScript struct {
	rdb    *redis.Client
	policy keypolicy.Policy
}

type fieldPlan struct {
	cellKey string
	value   string
	idxKeys []string
}

func (s *serverScript) Insert(ctx context.Context, td schema.TableDefinition, rec record.Record) error {
	// Every field is planned, not just the ones rec supplies: an absent
	// field is a null like any other and must still be validated and
	// indexed by the script (see checkDependencies for the same rule on
	// the Simple/Transactional paths).
	var plans []fieldPlan
	for _, f := range td.AllFields() {
		v, _ := rec.Value(f)
		value := nullSentinel
		if v != nil {
			value = *v
		}
		var idxKeys []string
		for _, fd := range td.FDs[f] {
			idxKeys = append(idxKeys, schema.FDIndexKey(fd, rec.DeterminantIdentifier(fd, s.policy)))
		}
		plans = append(plans, fieldPlan{
			cellKey: rec.CellKey(td, f, s.policy),
			value:   value,
			idxKeys: idxKeys,
		})
	}

	keys := make([]string, 0, 1+2*len(plans))
	keys = append(keys, schema.TableKeysKey(td.Table.Name))
	for _, p := range plans {
		keys = append(keys, p.cellKey)
	}
	for _, p := range plans {
		keys = append(keys, p.idxKeys...)
	}

	argv := make([]interface{}, 0, 3+2*len(plans))
	argv = append(argv, rec.PrimaryKeyIdentifier(td, s.policy), len(plans))
	for _, p := range plans {
		argv = append(argv, p.value)
	}
	for _, p := range plans {
		argv = append(argv, len(p.idxKeys))
	}
	argv = append(argv, nullSentinel)

	res, err := insertScript.Run(ctx, s.rdb, keys, argv...).Result()
	if err != nil {
		return relerr.WrapBackend("run insert script", err)
	}
	if n, ok := res.(int64); ok && n == 0 {
		return relerr.DependencyBroken(td.Table.Name)
	}
	return nil
}

package insert

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/schema"
)

// simple performs the FD check and the two write phases as a sequence of
// individual, unpipelined commands, with no isolation from a concurrent
// writer. It exists for
// workloads that can tolerate the race in exchange for the lowest latency.
type simple struct {
	rdb    *redis.Client
	policy keypolicy.Policy
}

func (s *simple) Insert(ctx context.Context, td schema.TableDefinition, rec record.Record) error {
	if err := checkDependencies(ctx, s.rdb, td, rec, s.policy, nil); err != nil {
		return err
	}
	if err := writeCells(ctx, s.rdb, td, rec, s.policy); err != nil {
		return err
	}
	return updateIndexes(ctx, s.rdb, td, rec, s.policy)
}

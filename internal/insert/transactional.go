package insert

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/retry"
	"github.com/relcore/relcore/internal/schema"
)

// transactional performs the FD check and both write phases under a
// go-redis optimistic transaction: the FD-index keys it reads are watched,
// so a concurrent writer touching them aborts the transaction with
// redis.TxFailedErr, which is retried with backoff until the retry policy's
// elapsed-time budget runs out and is then reported as
// relerr.ErrTransactionInterrupted.
type transactional struct {
	rdb         *redis.Client
	policy      keypolicy.Policy
	retries     *retry.Counter
	retryPolicy retry.Policy
}

func (s *transactional) Insert(ctx context.Context, td schema.TableDefinition, rec record.Record) error {
	watchKeys := dependencyIndexKeys(td, rec, s.policy)

	err := retry.Do(ctx, s.retryPolicy, s.retries, func() error {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			var extraKeys []string
			if err := checkDependencies(ctx, tx, td, rec, s.policy, func(cellKey string) {
				extraKeys = append(extraKeys, cellKey)
			}); err != nil {
				return err
			}
			// checkDependencies only discovers the cell keys of an
			// equivalence class's existing members once it reads the
			// FD-index sets above; watch them now so a concurrent writer
			// changing one of those values (without touching index
			// membership) still aborts this transaction.
			if len(extraKeys) > 0 {
				if err := tx.Watch(ctx, extraKeys...).Err(); err != nil {
					return err
				}
			}
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if err := writeCells(ctx, pipe, td, rec, s.policy); err != nil {
					return err
				}
				return updateIndexes(ctx, pipe, td, rec, s.policy)
			})
			return err
		}, watchKeys...)

		if errors.Is(err, redis.TxFailedErr) {
			return retry.Retryable(err)
		}
		return err
	})
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %v", relerr.ErrTransactionInterrupted, err)
	}
	return err
}

// dependencyIndexKeys returns the FD-index key for every functional
// dependency of td, regardless of whether rec supplies the dependent field —
// an absent field is still validated and indexed as a null, so its index key
// must be watched too.
func dependencyIndexKeys(td schema.TableDefinition, rec record.Record, policy keypolicy.Policy) []string {
	var keys []string
	for _, fds := range td.FDs {
		for _, fd := range fds {
			keys = append(keys, schema.FDIndexKey(fd, rec.DeterminantIdentifier(fd, policy)))
		}
	}
	return keys
}

// Package relcore exposes a minimal public API for driving the relational
// engine: schema registration, insert, delete, and projection-select,
// backed by a Redis-compatible store.
//
// Most callers construct a Core once at startup with New and reuse it; the
// underlying client pool is safe for concurrent use.
package relcore

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/relcore/relcore/internal/condition"
	"github.com/relcore/relcore/internal/config"
	"github.com/relcore/relcore/internal/deleteengine"
	"github.com/relcore/relcore/internal/insert"
	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/kvstore"
	"github.com/relcore/relcore/internal/metrics"
	"github.com/relcore/relcore/internal/query"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/relerr"
	"github.com/relcore/relcore/internal/retry"
	"github.com/relcore/relcore/internal/schema"
)

// Public type aliases: callers of this module work exclusively in terms of
// these names and never need to import the internal packages directly.
type (
	Table                = schema.Table
	Field                = schema.Field
	FieldDefinition      = schema.FieldDefinition
	FunctionalDependency = schema.FunctionalDependency
	TableDefinition      = schema.TableDefinition
	CoreConfiguration    = schema.CoreConfiguration

	Record = record.Record

	Condition = condition.Condition
	Equals    = condition.Equals
	In        = condition.In
	Not       = condition.Not

	Selector      = query.Selector
	JoinStatement = query.JoinStatement
	FieldRef      = query.FieldRef
	Row           = query.Row
)

// Strategy constants, re-exported so callers never import internal/schema.
const (
	InsertSimple        = schema.InsertSimple
	InsertTransactional = schema.InsertTransactional
	InsertServerScript  = schema.InsertServerScript

	DeleteSimple       = schema.DeleteSimple
	DeleteServerScript = schema.DeleteServerScript

	KeyPolicyJSON = schema.KeyPolicyJSON
	KeyPolicyHash = schema.KeyPolicyHash

	ListRecordsSet  = schema.ListRecordsSet
	ListRecordsScan = schema.ListRecordsScan
	ListRecordsKeys = schema.ListRecordsKeys
)

// NewTableDefinition validates and constructs a TableDefinition.
func NewTableDefinition(table Table, fields []FieldDefinition, fds []FunctionalDependency) (TableDefinition, error) {
	return schema.NewTableDefinition(table, fields, fds)
}

// DefaultConfiguration mirrors the reference implementation's strategy
// defaults: atomic server-side scripting for mutation, human-readable JSON
// keys, and set-based iteration.
func DefaultConfiguration() CoreConfiguration { return schema.DefaultConfiguration() }

// Core is the entry point for every operation against one backing store.
// Construct with New; the zero value is not usable.
type Core struct {
	catalog  *schema.Catalog
	policy   keypolicy.Policy
	inserter insert.Inserter
	deleter  deleteengine.Deleter
	executor *query.Executor
	retries  *retry.Counter
	rdb      kvClient
	log      *slog.Logger
}

// kvClient narrows the exported surface of *redis.Client to Close, the one
// method Core needs beyond what it hands off to internal packages.
type kvClient interface {
	Close() error
}

// Options configures New. The zero value is valid and resolves every field
// from config.Load (environment variables prefixed RELCORE_).
type Options struct {
	Settings *config.Settings
	Logger   *slog.Logger
	Meter    metric.Meter
	Tables   []TableDefinition
}

// New dials the backing store, builds the catalog from opts.Tables, and
// returns a ready-to-use Core.
func New(ctx context.Context, opts Options) (*Core, error) {
	settings := opts.Settings
	if settings == nil {
		loaded := config.Load()
		settings = &loaded
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rdb, err := kvstore.Dial(ctx, settings.Store)
	if err != nil {
		return nil, err
	}

	policy := keypolicy.New(settings.Core.KeyPolicy)
	catalog := schema.NewCatalog(settings.Core, opts.Tables...)
	retries := &retry.Counter{}
	retryPolicy := retry.Policy{MaxElapsedTime: settings.Retry.MaxElapsedTime}

	if err := metrics.RegisterInsertRetries(opts.Meter, retries); err != nil {
		logger.Warn("failed to register insert_retries instrument", "error", err)
	}

	return &Core{
		catalog:  catalog,
		policy:   policy,
		inserter: insert.New(settings.Core.InsertType, rdb, policy, retries, retryPolicy),
		deleter:  deleteengine.New(settings.Core.DeleteType, rdb, policy),
		executor: query.NewExecutor(rdb, catalog, policy),
		retries:  retries,
		rdb:      rdb,
		log:      logger,
	}, nil
}

// Metadata returns the definition of a registered table.
func (c *Core) Metadata(tableName string) (TableDefinition, bool) {
	return c.catalog.TableByName(tableName)
}

// Insert writes rec into its table, enforcing every declared functional
// dependency. A conflicting FD returns relerr.ErrDependencyBroken.
func (c *Core) Insert(ctx context.Context, rec Record) error {
	td, ok := c.catalog.TableByName(rec.Table.Name)
	if !ok {
		return relerr.InvalidDescriptor(rec.Table.Name)
	}
	if err := c.inserter.Insert(ctx, td, rec); err != nil {
		c.log.Error("insert failed", "table", rec.Table.Name, "error", err)
		return err
	}
	return nil
}

// Delete removes the record identified by pk's primary-key fields.
func (c *Core) Delete(ctx context.Context, pk Record) error {
	td, ok := c.catalog.TableByName(pk.Table.Name)
	if !ok {
		return relerr.InvalidDescriptor(pk.Table.Name)
	}
	if err := c.deleter.Delete(ctx, td, pk); err != nil {
		c.log.Error("delete failed", "table", pk.Table.Name, "error", err)
		return err
	}
	return nil
}

// Select evaluates a projection-select and returns every matching row.
func (c *Core) Select(ctx context.Context, sel Selector) ([]Row, error) {
	return c.executor.Select(ctx, sel)
}

// InsertRetries reports the cumulative count of retried TRANSACTIONAL
// insert attempts across this Core's lifetime.
func (c *Core) InsertRetries() int64 {
	return c.retries.Load()
}

// Close releases the backing-store connection pool.
func (c *Core) Close() error {
	return c.rdb.Close()
}

package relcore_test

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore"
	"github.com/relcore/relcore/internal/config"
	"github.com/relcore/relcore/internal/inttest"
	"github.com/relcore/relcore/internal/kvstore"
)

func ptr(s string) *string { return &s }

func newTestCore(t *testing.T) *relcore.Core {
	t.Helper()
	rdb := inttest.Client(t)
	host, portStr, err := net.SplitHostPort(rdb.Options().Addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	settings := config.Settings{
		Store: kvstore.Settings{Host: host, Port: port},
		Core:  relcore.DefaultConfiguration(),
	}

	person, err := relcore.NewTableDefinition(relcore.Table{Name: "person"}, []relcore.FieldDefinition{
		{Field: relcore.Field{Name: "passport"}, IsPrimaryKey: true},
		{Field: relcore.Field{Name: "name"}},
		{Field: relcore.Field{Name: "country"}},
	}, []relcore.FunctionalDependency{
		{Determinants: []relcore.Field{{Name: "name"}}, Dependent: relcore.Field{Name: "country"}},
	})
	require.NoError(t, err)

	core, err := relcore.New(context.Background(), relcore.Options{
		Settings: &settings,
		Tables:   []relcore.TableDefinition{person},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func TestCoreInsertAndSelect(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	person, ok := core.Metadata("person")
	require.True(t, ok)

	err := core.Insert(ctx, relcore.Record{Table: person.Table, Values: map[relcore.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
		{Name: "country"}:  ptr("UK"),
	}})
	require.NoError(t, err)

	rows, err := core.Select(ctx, relcore.Selector{
		FromTable: person.Table,
		SelectFields: map[relcore.Table][]relcore.Field{
			person.Table: {{Name: "country"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "UK", *rows[0].Values[relcore.FieldRef{Table: person.Table, Field: relcore.Field{Name: "country"}}])

	require.Equal(t, int64(0), core.InsertRetries())
}

func TestCoreDelete(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	person, _ := core.Metadata("person")

	pk := relcore.Record{Table: person.Table, Values: map[relcore.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
		{Name: "country"}:  ptr("UK"),
	}}
	require.NoError(t, core.Insert(ctx, pk))
	require.NoError(t, core.Delete(ctx, relcore.Record{Table: person.Table, Values: map[relcore.Field]*string{
		{Name: "passport"}: ptr("P1"),
	}}))

	rows, err := core.Select(ctx, relcore.Selector{
		FromTable: person.Table,
		SelectFields: map[relcore.Table][]relcore.Field{
			person.Table: {{Name: "passport"}},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

package query_test

import (
	"context"
	"sort"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/condition"
	"github.com/relcore/relcore/internal/insert"
	"github.com/relcore/relcore/internal/inttest"
	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/query"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/retry"
	"github.com/relcore/relcore/internal/schema"
)

func ptr(s string) *string { return &s }

func buildCatalog(t *testing.T) (*schema.Catalog, schema.TableDefinition, schema.TableDefinition) {
	t.Helper()
	person, err := schema.NewTableDefinition(schema.Table{Name: "person"}, []schema.FieldDefinition{
		{Field: schema.Field{Name: "passport"}, IsPrimaryKey: true},
		{Field: schema.Field{Name: "name"}},
		{Field: schema.Field{Name: "country_code"}},
	}, nil)
	require.NoError(t, err)

	country, err := schema.NewTableDefinition(schema.Table{Name: "country"}, []schema.FieldDefinition{
		{Field: schema.Field{Name: "code"}, IsPrimaryKey: true},
		{Field: schema.Field{Name: "capital"}},
	}, nil)
	require.NoError(t, err)

	cat := schema.NewCatalog(schema.DefaultConfiguration(), person, country)
	return cat, person, country
}

func seed(t *testing.T, rdb *redis.Client, person, country schema.TableDefinition, policy keypolicy.Policy) {
	ctx := context.Background()
	ins := insert.New(schema.InsertSimple, rdb, policy, &retry.Counter{}, retry.DefaultPolicy())

	people := []record.Record{
		{Table: person.Table, Values: map[schema.Field]*string{
			{Name: "passport"}: ptr("P1"), {Name: "name"}: ptr("Ada"), {Name: "country_code"}: ptr("UK"),
		}},
		{Table: person.Table, Values: map[schema.Field]*string{
			{Name: "passport"}: ptr("P2"), {Name: "name"}: ptr("Grace"), {Name: "country_code"}: ptr("US"),
		}},
	}
	for _, r := range people {
		require.NoError(t, ins.Insert(ctx, person, r))
	}

	countries := []record.Record{
		{Table: country.Table, Values: map[schema.Field]*string{
			{Name: "code"}: ptr("UK"), {Name: "capital"}: ptr("London"),
		}},
		{Table: country.Table, Values: map[schema.Field]*string{
			{Name: "code"}: ptr("US"), {Name: "capital"}: ptr("Washington"),
		}},
	}
	for _, r := range countries {
		require.NoError(t, ins.Insert(ctx, country, r))
	}
}

func TestSelectSingleTableWithPredicate(t *testing.T) {
	rdb := inttest.Client(t)
	cat, person, country := buildCatalog(t)
	policy := keypolicy.New(keypolicy.JSON)
	seed(t, rdb, person, country, policy)

	ex := query.NewExecutor(rdb, cat, policy)
	nameField := schema.Field{Name: "name"}
	sel := query.Selector{
		FromTable:  person.Table,
		Conditions: []condition.Condition{condition.Equals{Of: person.Table, On: nameField, Literal: ptr("Ada")}},
		SelectFields: map[schema.Table][]schema.Field{
			person.Table: {{Name: "passport"}},
		},
	}

	rows, err := ex.Select(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	ref := query.FieldRef{Table: person.Table, Field: schema.Field{Name: "passport"}}
	assert.Equal(t, "P1", *rows[0].Values[ref])
}

func TestSelectPKJoin(t *testing.T) {
	rdb := inttest.Client(t)
	cat, person, country := buildCatalog(t)
	policy := keypolicy.New(keypolicy.JSON)
	seed(t, rdb, person, country, policy)

	ex := query.NewExecutor(rdb, cat, policy)
	sel := query.Selector{
		FromTable: person.Table,
		Joins: []query.JoinStatement{{
			BaseFields:   []query.FieldRef{{Table: person.Table, Field: schema.Field{Name: "country_code"}}},
			TargetTable:  country.Table,
			TargetFields: []schema.Field{{Name: "code"}},
		}},
		SelectFields: map[schema.Table][]schema.Field{
			person.Table:  {{Name: "name"}},
			country.Table: {{Name: "capital"}},
		},
	}

	rows, err := ex.Select(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	nameRef := query.FieldRef{Table: person.Table, Field: schema.Field{Name: "name"}}
	capitalRef := query.FieldRef{Table: country.Table, Field: schema.Field{Name: "capital"}}
	got := map[string]string{}
	for _, r := range rows {
		got[*r.Values[nameRef]] = *r.Values[capitalRef]
	}
	assert.Equal(t, map[string]string{"Ada": "London", "Grace": "Washington"}, got)
}

func TestSelectDisconnectedTablesCartesianProduct(t *testing.T) {
	rdb := inttest.Client(t)
	cat, person, country := buildCatalog(t)
	policy := keypolicy.New(keypolicy.JSON)
	seed(t, rdb, person, country, policy)

	ex := query.NewExecutor(rdb, cat, policy)
	sel := query.Selector{
		FromTable: person.Table,
		Joins: []query.JoinStatement{{
			TargetTable: country.Table,
		}},
		SelectFields: map[schema.Table][]schema.Field{
			person.Table:  {{Name: "passport"}},
			country.Table: {{Name: "code"}},
		},
	}

	rows, err := ex.Select(context.Background(), sel)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "an empty-fields join statement should yield the full 2x2 cross product")
}

func TestSelectPKFastPathDropsUnmatchedTargets(t *testing.T) {
	rdb := inttest.Client(t)
	policy := keypolicy.New(keypolicy.JSON)
	ctx := context.Background()

	t1, err := schema.NewTableDefinition(schema.Table{Name: "t1"}, []schema.FieldDefinition{
		{Field: schema.Field{Name: "p"}, IsPrimaryKey: true},
		{Field: schema.Field{Name: "f1"}},
	}, nil)
	require.NoError(t, err)
	t2, err := schema.NewTableDefinition(schema.Table{Name: "t2"}, []schema.FieldDefinition{
		{Field: schema.Field{Name: "p2"}, IsPrimaryKey: true},
		{Field: schema.Field{Name: "f2"}},
	}, nil)
	require.NoError(t, err)
	cat := schema.NewCatalog(schema.DefaultConfiguration(), t1, t2)

	ins := insert.New(schema.InsertSimple, rdb, policy, &retry.Counter{}, retry.DefaultPolicy())
	for i, p2 := range []string{"k1", "k2", "k3", "nomatch"} {
		require.NoError(t, ins.Insert(ctx, t1, record.Record{Table: t1.Table, Values: map[schema.Field]*string{
			{Name: "p"}: ptr("row" + string(rune('A'+i))), {Name: "f1"}: ptr(p2),
		}}))
	}
	for _, k := range []string{"k1", "k2", "k3"} {
		require.NoError(t, ins.Insert(ctx, t2, record.Record{Table: t2.Table, Values: map[schema.Field]*string{
			{Name: "p2"}: ptr(k), {Name: "f2"}: ptr("value-" + k),
		}}))
	}

	ex := query.NewExecutor(rdb, cat, policy)
	sel := query.Selector{
		FromTable: t1.Table,
		Joins: []query.JoinStatement{{
			BaseFields:   []query.FieldRef{{Table: t1.Table, Field: schema.Field{Name: "f1"}}},
			TargetTable:  t2.Table,
			TargetFields: []schema.Field{{Name: "p2"}},
		}},
		SelectFields: map[schema.Table][]schema.Field{
			t1.Table: {{Name: "p"}},
		},
	}

	rows, err := ex.Select(ctx, sel)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "the row joining on a nonexistent t2.p2 should be dropped")
}

func TestSelectPKJoinAppliesTargetPredicatesPostFetch(t *testing.T) {
	rdb := inttest.Client(t)
	cat, person, country := buildCatalog(t)
	policy := keypolicy.New(keypolicy.JSON)
	seed(t, rdb, person, country, policy)

	ex := query.NewExecutor(rdb, cat, policy)
	sel := query.Selector{
		FromTable: person.Table,
		Joins: []query.JoinStatement{{
			BaseFields:   []query.FieldRef{{Table: person.Table, Field: schema.Field{Name: "country_code"}}},
			TargetTable:  country.Table,
			TargetFields: []schema.Field{{Name: "code"}},
		}},
		Conditions: []condition.Condition{
			condition.Equals{Of: country.Table, On: schema.Field{Name: "capital"}, Literal: ptr("London")},
		},
		SelectFields: map[schema.Table][]schema.Field{
			person.Table: {{Name: "name"}},
		},
	}

	rows, err := ex.Select(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, rows, 1, "the PK fast path must still filter out rows whose target predicate fails")
	nameRef := query.FieldRef{Table: person.Table, Field: schema.Field{Name: "name"}}
	assert.Equal(t, "Ada", *rows[0].Values[nameRef])
}

func TestSelectSeqYieldsSameRowsAsSelect(t *testing.T) {
	rdb := inttest.Client(t)
	cat, person, country := buildCatalog(t)
	policy := keypolicy.New(keypolicy.JSON)
	seed(t, rdb, person, country, policy)

	ex := query.NewExecutor(rdb, cat, policy)
	sel := query.Selector{
		FromTable: person.Table,
		SelectFields: map[schema.Table][]schema.Field{
			person.Table: {{Name: "passport"}},
		},
	}

	ref := query.FieldRef{Table: person.Table, Field: schema.Field{Name: "passport"}}
	var seqIDs []string
	for row, err := range ex.SelectSeq(context.Background(), sel) {
		require.NoError(t, err)
		seqIDs = append(seqIDs, *row.Values[ref])
	}
	sort.Strings(seqIDs)
	assert.Equal(t, []string{"P1", "P2"}, seqIDs)
}

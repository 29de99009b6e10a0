package deleteengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/deleteengine"
	"github.com/relcore/relcore/internal/insert"
	"github.com/relcore/relcore/internal/inttest"
	"github.com/relcore/relcore/internal/keypolicy"
	"github.com/relcore/relcore/internal/record"
	"github.com/relcore/relcore/internal/retry"
	"github.com/relcore/relcore/internal/schema"
)

func ptr(s string) *string { return &s }

func personTable(t *testing.T) schema.TableDefinition {
	t.Helper()
	td, err := schema.NewTableDefinition(schema.Table{Name: "person"}, []schema.FieldDefinition{
		{Field: schema.Field{Name: "passport"}, IsPrimaryKey: true},
		{Field: schema.Field{Name: "name"}},
		{Field: schema.Field{Name: "country"}},
	}, []schema.FunctionalDependency{
		{Determinants: []schema.Field{{Name: "name"}}, Dependent: schema.Field{Name: "country"}},
	})
	require.NoError(t, err)
	return td
}

func runDeleteSuite(t *testing.T, kind schema.DeleteType) {
	rdb := inttest.Client(t)
	td := personTable(t)
	policy := keypolicy.New(keypolicy.JSON)
	ctx := context.Background()

	r1 := record.Record{Table: td.Table, Values: map[schema.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
		{Name: "country"}:  ptr("UK"),
	}}
	inserter := insert.New(schema.InsertSimple, rdb, policy, &retry.Counter{}, retry.DefaultPolicy())
	require.NoError(t, inserter.Insert(ctx, td, r1))

	del := deleteengine.New(kind, rdb, policy)
	pk := record.Record{Table: td.Table, Values: map[schema.Field]*string{
		{Name: "passport"}: ptr("P1"),
	}}
	require.NoError(t, del.Delete(ctx, td, pk))

	exists, err := rdb.Exists(ctx, r1.CellKey(td, schema.Field{Name: "country"}, policy)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "cell key should be gone after delete")

	member, err := rdb.SIsMember(ctx, schema.TableKeysKey("person"), r1.PrimaryKeyIdentifier(td, policy)).Result()
	require.NoError(t, err)
	assert.False(t, member)

	idxKey := schema.FDIndexKey(td.FDs[schema.Field{Name: "country"}][0], `{"name":"Ada"}`)
	card, err := rdb.SCard(ctx, idxKey).Result()
	require.NoError(t, err)
	assert.Zero(t, card, "FD index should no longer reference the deleted record")
}

func TestSimpleDelete(t *testing.T) {
	runDeleteSuite(t, schema.DeleteSimple)
}

func TestServerScriptDelete(t *testing.T) {
	runDeleteSuite(t, schema.DeleteServerScript)
}

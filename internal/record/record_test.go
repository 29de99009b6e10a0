package record

import (
	"testing"

	"github.com/relcore/relcore/internal/keypolicy"
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
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return td
}

func TestPrimaryKeyIdentifierUsesOnlyPKFields(t *testing.T) {
	td := personTable(t)
	policy := keypolicy.New(keypolicy.JSON)

	r := Record{Table: td.Table, Values: map[schema.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
		{Name: "country"}:  ptr("UK"),
	}}

	got := r.PrimaryKeyIdentifier(td, policy)
	want := `{"passport":"P1"}`
	if got != want {
		t.Fatalf("PrimaryKeyIdentifier = %q, want %q", got, want)
	}
}

func TestDeterminantIdentifierUsesOnlyDeterminantFields(t *testing.T) {
	td := personTable(t)
	policy := keypolicy.New(keypolicy.JSON)
	fd := td.FDs[schema.Field{Name: "country"}][0]

	r := Record{Table: td.Table, Values: map[schema.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
		{Name: "country"}:  ptr("UK"),
	}}

	got := r.DeterminantIdentifier(fd, policy)
	want := `{"name":"Ada"}`
	if got != want {
		t.Fatalf("DeterminantIdentifier = %q, want %q", got, want)
	}
}

func TestCellKeyMatchesSchemaLayout(t *testing.T) {
	td := personTable(t)
	policy := keypolicy.New(keypolicy.JSON)
	r := Record{Table: td.Table, Values: map[schema.Field]*string{
		{Name: "passport"}: ptr("P1"),
		{Name: "name"}:     ptr("Ada"),
	}}

	got := r.CellKey(td, schema.Field{Name: "name"}, policy)
	want := `__value__:person:name:{"passport":"P1"}`
	if got != want {
		t.Fatalf("CellKey = %q, want %q", got, want)
	}
}

func TestValueDistinguishesAbsentFromNull(t *testing.T) {
	r := Record{Values: map[schema.Field]*string{
		{Name: "f1"}: nil,
	}}

	v, ok := r.Value(schema.Field{Name: "f1"})
	if !ok || v != nil {
		t.Fatalf("Value(f1) = (%v, %v), want (nil, true)", v, ok)
	}

	_, ok = r.Value(schema.Field{Name: "missing"})
	if ok {
		t.Fatal("Value(missing) should report absent")
	}
}

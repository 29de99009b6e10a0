package condition

import (
	"testing"

	"github.com/relcore/relcore/internal/schema"
)

func ptr(s string) *string { return &s }

var personTable = schema.Table{Name: "person"}

func TestEqualsMatchesLiteral(t *testing.T) {
	c := Equals{Of: personTable, On: schema.Field{Name: "name"}, Literal: ptr("Ada")}
	if !c.Matches(ptr("Ada")) {
		t.Fatal("expected match on equal literal")
	}
	if c.Matches(ptr("Bob")) {
		t.Fatal("expected no match on differing literal")
	}
}

func TestEqualsNullSemantics(t *testing.T) {
	c := Equals{Of: personTable, On: schema.Field{Name: "name"}, Literal: nil}
	if !c.Matches(nil) {
		t.Fatal("null literal should match null value")
	}
	if c.Matches(ptr("Ada")) {
		t.Fatal("null literal should not match non-null value")
	}

	c2 := Equals{Of: personTable, On: schema.Field{Name: "name"}, Literal: ptr("Ada")}
	if c2.Matches(nil) {
		t.Fatal("non-null literal should not match null value")
	}
}

func TestInMatchesAnyLiteral(t *testing.T) {
	c := In{Of: personTable, On: schema.Field{Name: "name"}, Literals: []*string{ptr("Ada"), ptr("Bob"), nil}}
	if !c.Matches(ptr("Bob")) {
		t.Fatal("expected match on Bob")
	}
	if !c.Matches(nil) {
		t.Fatal("expected match on null, since nil is in the literal set")
	}
	if c.Matches(ptr("Carl")) {
		t.Fatal("expected no match on Carl")
	}
}

func TestNotNegates(t *testing.T) {
	c := Not{Inner: Equals{Of: personTable, On: schema.Field{Name: "name"}, Literal: ptr("Ada")}}
	if c.Matches(ptr("Ada")) {
		t.Fatal("Not(Equals(Ada)) should not match Ada")
	}
	if !c.Matches(ptr("Bob")) {
		t.Fatal("Not(Equals(Ada)) should match Bob")
	}
}

func TestTableAndFieldDelegateToInner(t *testing.T) {
	f := schema.Field{Name: "country"}
	c := Not{Inner: Equals{Of: personTable, On: f, Literal: ptr("UK")}}
	if c.Field() != f {
		t.Fatalf("Field() = %v, want %v", c.Field(), f)
	}
	if c.Table() != personTable {
		t.Fatalf("Table() = %v, want %v", c.Table(), personTable)
	}
}

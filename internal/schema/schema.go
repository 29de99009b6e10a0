// Package schema holds the table/field catalog and the key-layout functions
// every other component relies on to address cells in the backing store.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Table identifies a table within a query. Identity is the alias when
// present, else the name, so two Table values collide (and self-joins
// become possible) exactly when their identities match.
type Table struct {
	Name  string
	Alias string
}

// Identity returns the alias if set, else the name.
func (t Table) Identity() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Field is a field descriptor; equality is structural (the zero value is
// usable as a map key).
type Field struct {
	Name string
}

// FieldDefinition describes one field of a table.
type FieldDefinition struct {
	Field        Field
	IsPrimaryKey bool
}

// FunctionalDependency states that the dependent field's value is uniquely
// determined, table-wide, by the determinant fields' values.
type FunctionalDependency struct {
	Determinants []Field
	Dependent    Field
}

// TableDefinition is the catalog entry for one table: its fields and the
// functional dependencies declared over them. Construct via
// NewTableDefinition so the derived accessors and invariants hold.
type TableDefinition struct {
	Table Table
	// Fields maps every field of the table to its definition.
	Fields map[Field]FieldDefinition
	// FDs maps dependent field to the functional dependencies it is the
	// dependent of.
	FDs map[Field][]FunctionalDependency

	allFields []Field
	pkFields  []Field
}

// AllFields returns every field of the table, sorted by name for
// deterministic iteration order.
func (t TableDefinition) AllFields() []Field { return t.allFields }

// PrimaryKeyFields returns the table's primary-key fields, sorted by name.
func (t TableDefinition) PrimaryKeyFields() []Field { return t.pkFields }

// NewTableDefinition validates and constructs a TableDefinition: at least
// one field must be a primary key, and every FD field must belong to the
// table.
func NewTableDefinition(table Table, fields []FieldDefinition, fds []FunctionalDependency) (TableDefinition, error) {
	fieldMap := make(map[Field]FieldDefinition, len(fields))
	hasPK := false
	for _, fd := range fields {
		fieldMap[fd.Field] = fd
		if fd.IsPrimaryKey {
			hasPK = true
		}
	}
	if !hasPK {
		return TableDefinition{}, invalidTable(table.Name, "no primary key field declared")
	}

	fdsByDependent := make(map[Field][]FunctionalDependency, len(fds))
	for _, fd := range fds {
		if _, ok := fieldMap[fd.Dependent]; !ok {
			return TableDefinition{}, invalidTable(table.Name, "FD dependent %q is not a table field", fd.Dependent.Name)
		}
		for _, det := range fd.Determinants {
			if _, ok := fieldMap[det]; !ok {
				return TableDefinition{}, invalidTable(table.Name, "FD determinant %q is not a table field", det.Name)
			}
		}
		fdsByDependent[fd.Dependent] = append(fdsByDependent[fd.Dependent], fd)
	}

	all := make([]Field, 0, len(fields))
	for f := range fieldMap {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	pk := make([]Field, 0)
	for _, f := range all {
		if fieldMap[f].IsPrimaryKey {
			pk = append(pk, f)
		}
	}

	return TableDefinition{
		Table:     table,
		Fields:    fieldMap,
		FDs:       fdsByDependent,
		allFields: all,
		pkFields:  pk,
	}, nil
}

// Catalog (the MetadataStore of the spec) holds every table definition plus
// the strategy selectors chosen at Core construction.
type Catalog struct {
	Config CoreConfiguration

	tables map[string]TableDefinition
}

// NewCatalog builds a Catalog from a set of table definitions, keyed by
// their underlying (non-alias) name.
func NewCatalog(config CoreConfiguration, tables ...TableDefinition) *Catalog {
	m := make(map[string]TableDefinition, len(tables))
	for _, t := range tables {
		m[t.Table.Name] = t
	}
	return &Catalog{Config: config, tables: m}
}

// TableByName looks up a table definition by its underlying name (not
// alias — aliases affect query binding only, never storage).
func (c *Catalog) TableByName(name string) (TableDefinition, bool) {
	td, ok := c.tables[name]
	return td, ok
}

// Key layouts. These formats are part of the external, persisted contract:
// a second implementation must reproduce them byte for byte.

// TableKeysKey is the table-index set holding the PK identifiers of every
// live record of the table.
func TableKeysKey(tableName string) string {
	return "__table_keys__:" + tableName
}

// CellKey is the key holding the value of one field of one record.
func CellKey(tableName, fieldName, pkIdentifier string) string {
	return "__value__:" + tableName + ":" + fieldName + ":" + pkIdentifier
}

// FieldScanPrefix is the prefix shared by every cell key of one field of one
// table; table iterators restrict SCAN/KEYS to a single field to avoid the
// ambiguity of splitting identifiers containing ":".
func FieldScanPrefix(tableName, fieldName string) string {
	return "__value__:" + tableName + ":" + fieldName + ":"
}

// FDIndexKey is the FD-index set collecting the dependent-field cell keys
// of every record sharing the given determinant identifier.
func FDIndexKey(fd FunctionalDependency, determinantIdentifier string) string {
	names := make([]string, len(fd.Determinants))
	for i, d := range fd.Determinants {
		names[i] = d.Name
	}
	sort.Strings(names)
	return "__dependency_index__:" + strings.Join(names, "&") + "=>" + fd.Dependent.Name + ":" + determinantIdentifier
}

func invalidTable(name, format string, args ...any) error {
	return &InvalidTableError{Table: name, Reason: fmt.Sprintf(format, args...)}
}

// InvalidTableError reports a malformed TableDefinition caught at catalog
// construction time — a programmer error, never recoverable.
type InvalidTableError struct {
	Table  string
	Reason string
}

func (e *InvalidTableError) Error() string {
	return "table " + e.Table + ": " + e.Reason
}

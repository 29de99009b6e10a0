package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relcore/relcore"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Populate and query the person/country/president example schema",
	Long: `demo loads the reference example schema — a person table (composite
primary key, an FD from city to country) and a country table tracking each
country's president — inserts a handful of sample rows, then runs a
self-join select joining person back to country's president fields.`,
	RunE: runDemo,
}

var (
	fieldName        = relcore.Field{Name: "name"}
	fieldLastname    = relcore.Field{Name: "lastname"}
	fieldCity        = relcore.Field{Name: "city"}
	fieldCountry     = relcore.Field{Name: "country"}
	fieldCountryName = relcore.Field{Name: "name"}
	fieldLanguage    = relcore.Field{Name: "language"}
	fieldPresName    = relcore.Field{Name: "president_name"}
	fieldPresLast    = relcore.Field{Name: "president_lastname"}
)

func personCountrySchema() (relcore.TableDefinition, relcore.TableDefinition, error) {
	person, err := relcore.NewTableDefinition(relcore.Table{Name: "person"}, []relcore.FieldDefinition{
		{Field: fieldName, IsPrimaryKey: true},
		{Field: fieldLastname, IsPrimaryKey: true},
		{Field: fieldCity},
		{Field: fieldCountry},
	}, []relcore.FunctionalDependency{
		{Determinants: []relcore.Field{fieldCity}, Dependent: fieldCountry},
	})
	if err != nil {
		return relcore.TableDefinition{}, relcore.TableDefinition{}, err
	}

	country, err := relcore.NewTableDefinition(relcore.Table{Name: "country"}, []relcore.FieldDefinition{
		{Field: fieldCountryName, IsPrimaryKey: true},
		{Field: fieldLanguage},
		{Field: fieldPresName},
		{Field: fieldPresLast},
	}, nil)
	return person, country, err
}

func ptr(s string) *string { return &s }

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	person, country, err := personCountrySchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	core, err := relcore.New(ctx, relcore.Options{Tables: []relcore.TableDefinition{person, country}})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer core.Close()

	seedDemoData(ctx, core, person, country)

	presidentTable := relcore.Table{Name: "person", Alias: "president"}
	sel := relcore.Selector{
		FromTable: person.Table,
		Joins: []relcore.JoinStatement{
			{
				BaseFields:   []relcore.FieldRef{{Table: person.Table, Field: fieldCountry}},
				TargetTable:  country.Table,
				TargetFields: []relcore.Field{fieldCountryName},
			},
			{
				BaseFields: []relcore.FieldRef{
					{Table: country.Table, Field: fieldPresName},
					{Table: country.Table, Field: fieldPresLast},
				},
				TargetTable:  presidentTable,
				TargetFields: []relcore.Field{fieldName, fieldLastname},
			},
		},
		SelectFields: map[relcore.Table][]relcore.Field{
			person.Table:   {fieldName, fieldLastname},
			country.Table:  {fieldCountryName, fieldLanguage},
			presidentTable: {fieldName, fieldLastname, fieldCity},
		},
	}

	rows, err := core.Select(ctx, sel)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}

	for _, row := range rows {
		for ref, v := range row.Values {
			val := "<null>"
			if v != nil {
				val = *v
			}
			fmt.Printf("%s.%s=%s ", ref.Table.Identity(), ref.Field.Name, val)
		}
		fmt.Println()
	}

	slog.Info("demo complete", "rows", len(rows), "insert_retries", core.InsertRetries())
	return nil
}

func seedDemoData(ctx context.Context, core *relcore.Core, person, country relcore.TableDefinition) {
	people := []relcore.Record{
		{Table: person.Table, Values: map[relcore.Field]*string{
			fieldName: ptr("Jan"), fieldLastname: ptr("Kowalski"), fieldCity: ptr("Wroclaw"), fieldCountry: ptr("Poland"),
		}},
		{Table: person.Table, Values: map[relcore.Field]*string{
			fieldName: ptr("Anna"), fieldLastname: ptr("Nowak"), fieldCity: ptr("Warszawa"), fieldCountry: ptr("Poland"),
		}},
		{Table: person.Table, Values: map[relcore.Field]*string{
			fieldName: ptr("John"), fieldLastname: ptr("Smith"), fieldCity: ptr("London"), fieldCountry: ptr("England"),
		}},
		{Table: person.Table, Values: map[relcore.Field]*string{
			fieldName: ptr("Charles"), fieldLastname: ptr("Adams"), fieldCity: ptr("Birmingham"), fieldCountry: ptr("England"),
		}},
	}
	for _, r := range people {
		if err := core.Insert(ctx, r); err != nil {
			slog.Warn("insert skipped", "person", *r.Values[fieldName], "error", err)
		}
	}

	countries := []relcore.Record{
		{Table: country.Table, Values: map[relcore.Field]*string{
			fieldCountryName: ptr("Poland"), fieldLanguage: ptr("Polish"), fieldPresName: ptr("Jan"), fieldPresLast: ptr("Kowalski"),
		}},
		{Table: country.Table, Values: map[relcore.Field]*string{
			fieldCountryName: ptr("England"), fieldLanguage: ptr("English"), fieldPresName: ptr("Charles"), fieldPresLast: ptr("Adams"),
		}},
	}
	for _, r := range countries {
		if err := core.Insert(ctx, r); err != nil {
			slog.Warn("insert skipped", "country", *r.Values[fieldCountryName], "error", err)
		}
	}
}

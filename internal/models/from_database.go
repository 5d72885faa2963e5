package models

import (
	"fmt"

	"query-engine/internal/introspection"
	"query-engine/internal/naming"
)

// FromDatabase derives a model catalog from an inspected database schema.
// Every base table becomes a model; every column a scalar field; every
// foreign key a to-one relation on the referencing table and a to-many
// relation on the referenced table. Tables without a primary key are kept
// but have no identifier field.
func FromDatabase(db *introspection.Schema, namer *naming.Namer) (*Schema, error) {
	if db == nil {
		return nil, fmt.Errorf("database schema is nil")
	}
	if namer == nil {
		namer = naming.Default()
	}

	modelNames := make(map[string]string, len(db.Tables))
	fields := make(map[string][]Field, len(db.Tables))
	for _, table := range db.Tables {
		modelName := namer.RegisterModel(table.Name)
		modelNames[table.Name] = modelName
		fields[table.Name] = scalarFields(table, modelName, namer)
	}

	for _, table := range db.Tables {
		modelName := modelNames[table.Name]
		constraints := introspection.ForeignKeyConstraints(table)
		fkCount := make(map[string]int, len(constraints))
		for _, fk := range constraints {
			fkCount[fk.ReferencedTable]++
		}

		for _, fk := range constraints {
			targetModel, ok := modelNames[fk.ReferencedTable]
			if !ok {
				// Referenced table lives outside the inspected schema or is a view.
				continue
			}

			toOne := namer.RegisterRelationField(modelName, manyToOneName(namer, fk), "fk:"+fk.ConstraintName, false)
			fields[table.Name] = append(fields[table.Name], &RelationField{
				Name:             toOne,
				IsList:           false,
				IsRequired:       columnsRequired(table, fk.ColumnNames),
				RelatedModelName: targetModel,
				LocalColumns:     fk.ColumnNames,
				RemoteColumns:    fk.ReferencedColumns,
			})

			backName := namer.OneToManyFieldName(table.Name, fk.ColumnNames[0], fkCount[fk.ReferencedTable] == 1)
			toMany := namer.RegisterRelationField(targetModel, backName, "fk:"+table.Name+"."+fk.ConstraintName, true)
			fields[fk.ReferencedTable] = append(fields[fk.ReferencedTable], &RelationField{
				Name:             toMany,
				IsList:           true,
				RelatedModelName: modelName,
				LocalColumns:     fk.ReferencedColumns,
				RemoteColumns:    fk.ColumnNames,
			})
		}
	}

	models := make([]*Model, 0, len(db.Tables))
	for _, table := range db.Tables {
		models = append(models, NewModel(modelNames[table.Name], table.Name, fields[table.Name]...))
	}

	schema, err := NewSchema(models...)
	if err != nil {
		return nil, fmt.Errorf("failed to build model schema: %w", err)
	}
	return schema, nil
}

func scalarFields(table introspection.Table, modelName string, namer *naming.Namer) []Field {
	unique := introspection.UniqueColumns(table)
	pks := introspection.PrimaryKeyColumns(table)

	out := make([]Field, 0, len(table.Columns))
	for _, col := range table.Columns {
		_, isUnique := unique[col.Name]
		out = append(out, &ScalarField{
			Name:       namer.RegisterScalarField(modelName, col.Name),
			Column:     col.Name,
			Type:       TypeFromSQL(col.DataType),
			IsID:       len(pks) == 1 && col.IsPrimaryKey,
			IsRequired: !col.IsNullable,
			IsUnique:   isUnique,
		})
	}
	return out
}

func manyToOneName(namer *naming.Namer, fk introspection.ForeignKeyConstraint) string {
	if len(fk.ColumnNames) == 1 {
		return namer.ManyToOneFieldName(fk.ColumnNames[0])
	}
	return namer.FieldName(namer.Singularize(fk.ReferencedTable))
}

func columnsRequired(table introspection.Table, columns []string) bool {
	for _, name := range columns {
		for _, col := range table.Columns {
			if col.Name == name && col.IsNullable {
				return false
			}
		}
	}
	return true
}

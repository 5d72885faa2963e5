package introspection

import (
	"fmt"
	"sort"
)

// ForeignKeyConstraint groups per-column KEY_COLUMN_USAGE rows into an ordered FK constraint mapping.
type ForeignKeyConstraint struct {
	ConstraintName    string
	ReferencedTable   string
	ColumnNames       []string
	ReferencedColumns []string
}

// ForeignKeyConstraints returns FK constraints for a table ordered by
// constraint name, with columns ordered by ordinal position. Rows without a
// constraint name are never merged with each other.
func ForeignKeyConstraints(table Table) []ForeignKeyConstraint {
	if len(table.ForeignKeys) == 0 {
		return nil
	}

	grouped := make(map[string][]ForeignKey)
	for i, fk := range table.ForeignKeys {
		key := fk.ConstraintName
		if key == "" {
			key = fmt.Sprintf("\x00unnamed_%04d", i)
		}
		grouped[key] = append(grouped[key], fk)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]ForeignKeyConstraint, 0, len(keys))
	for _, key := range keys {
		rows := grouped[key]
		sort.SliceStable(rows, func(i, j int) bool {
			return ordinalLess(rows[i].OrdinalPosition, rows[j].OrdinalPosition)
		})
		constraint := ForeignKeyConstraint{
			ConstraintName:  rows[0].ConstraintName,
			ReferencedTable: rows[0].ReferencedTable,
		}
		for _, row := range rows {
			constraint.ColumnNames = append(constraint.ColumnNames, row.ColumnName)
			constraint.ReferencedColumns = append(constraint.ReferencedColumns, row.ReferencedColumn)
		}
		result = append(result, constraint)
	}
	return result
}

// ordinalLess orders known positions first; 0 means unknown.
func ordinalLess(a, b int) bool {
	switch {
	case a == b:
		return false
	case a == 0:
		return false
	case b == 0:
		return true
	default:
		return a < b
	}
}

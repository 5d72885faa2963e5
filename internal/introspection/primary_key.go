package introspection

// PrimaryKeyColumns returns all primary key columns for a table in column order.
func PrimaryKeyColumns(table Table) []Column {
	var cols []Column
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			cols = append(cols, col)
		}
	}
	return cols
}

// UniqueColumns returns the columns that carry a single-column unique index.
func UniqueColumns(table Table) map[string]struct{} {
	unique := make(map[string]struct{})
	for _, idx := range table.Indexes {
		if idx.Unique && len(idx.Columns) == 1 {
			unique[idx.Columns[0]] = struct{}{}
		}
	}
	return unique
}

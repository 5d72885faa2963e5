package models

import "strings"

// TypeIdentifier names the primitive storage type of a scalar field.
type TypeIdentifier string

const (
	TypeString   TypeIdentifier = "String"
	TypeInt      TypeIdentifier = "Int"
	TypeFloat    TypeIdentifier = "Float"
	TypeBoolean  TypeIdentifier = "Boolean"
	TypeDateTime TypeIdentifier = "DateTime"
	TypeJSON     TypeIdentifier = "Json"
	TypeEnum     TypeIdentifier = "Enum"
	TypeBytes    TypeIdentifier = "Bytes"
)

// TypeFromSQL converts a SQL data type to a TypeIdentifier. The input is
// case-insensitive and size specifiers like (10,2) are ignored.
func TypeFromSQL(sqlType string) TypeIdentifier {
	if idx := strings.Index(sqlType, "("); idx != -1 {
		sqlType = sqlType[:idx]
	}
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "SERIAL", "BIT":
		return TypeInt
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC":
		return TypeFloat
	case "BOOL", "BOOLEAN":
		return TypeBoolean
	case "JSON":
		return TypeJSON
	case "ENUM", "SET":
		return TypeEnum
	case "DATE", "DATETIME", "TIMESTAMP":
		return TypeDateTime
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY":
		return TypeBytes
	default:
		return TypeString
	}
}

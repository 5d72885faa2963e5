package naming

import "strings"

// reservedModelWords are GraphQL keywords, built-in scalars, and literals.
// A model carrying one of these names could not be addressed by a query.
var reservedModelWords = map[string]bool{
	"query": true, "mutation": true, "subscription": true, "type": true,
	"schema": true, "scalar": true, "enum": true, "input": true,
	"interface": true, "union": true, "fragment": true, "directive": true,
	"extend": true, "implements": true, "on": true,

	"int": true, "float": true, "string": true, "boolean": true, "id": true,

	"true": true, "false": true, "null": true,
}

// reservedArgumentWords are argument names the planner interprets. A field
// named like one of them would shadow the argument on a listing query.
var reservedArgumentWords = map[string]bool{
	"where": true, "orderby": true,
}

func isReservedTypeName(name string) bool {
	lowerName := strings.ToLower(name)
	if strings.HasPrefix(lowerName, "__") {
		return true
	}
	if reservedModelWords[lowerName] {
		return true
	}
	return isReservedPattern(lowerName)
}

func isReservedFieldName(name string) bool {
	lowerName := strings.ToLower(name)
	if strings.HasPrefix(lowerName, "__") {
		return true
	}
	if reservedArgumentWords[lowerName] {
		return true
	}
	return isReservedPattern(lowerName)
}

// isReservedPattern checks if a name matches patterns kept for future entry points.
func isReservedPattern(name string) bool {
	return strings.HasSuffix(name, "_aggregate")
}

package provider

import (
	"regexp"
	"strings"

	querylint "github.com/querylint/querylint"
)

// typeMapper maps engine-specific column type names onto the normalized
// querylint type tags.
type typeMapper struct {
	exact map[string]querylint.ColumnType
}

// typeParams strips length/precision suffixes like varchar(255).
var typeParams = regexp.MustCompile(`\(.*\)`)

func (m *typeMapper) mapType(dbType string) querylint.ColumnType {
	normalized := strings.ToLower(strings.TrimSpace(typeParams.ReplaceAllString(dbType, "")))

	if mapped, ok := m.exact[normalized]; ok {
		return mapped
	}

	// Affinity fallback for engines with open type names (mostly SQLite).
	switch {
	case strings.Contains(normalized, "int"):
		return querylint.TypeInt
	case strings.Contains(normalized, "char"), strings.Contains(normalized, "text"), strings.Contains(normalized, "clob"):
		return querylint.TypeString
	case strings.Contains(normalized, "blob"), strings.Contains(normalized, "binary"):
		return querylint.TypeBinary
	case strings.Contains(normalized, "real"), strings.Contains(normalized, "floa"), strings.Contains(normalized, "doub"):
		return querylint.TypeFloat
	case strings.Contains(normalized, "dec"), strings.Contains(normalized, "num"):
		return querylint.TypeDecimal
	case strings.Contains(normalized, "bool"):
		return querylint.TypeBool
	default:
		return querylint.TypeAny
	}
}

func newPostgresTypeMapper() *typeMapper {
	return &typeMapper{exact: map[string]querylint.ColumnType{
		// Integer types
		"integer": querylint.TypeInt, "int": querylint.TypeInt, "int2": querylint.TypeInt,
		"int4": querylint.TypeInt, "int8": querylint.TypeInt, "bigint": querylint.TypeInt,
		"smallint": querylint.TypeInt, "serial": querylint.TypeInt, "bigserial": querylint.TypeInt,
		"smallserial": querylint.TypeInt,

		// String types
		"text": querylint.TypeString, "varchar": querylint.TypeString,
		"character varying": querylint.TypeString, "character": querylint.TypeString,
		"char": querylint.TypeString, "bpchar": querylint.TypeString,
		"uuid": querylint.TypeString, "name": querylint.TypeString,

		// Numbers
		"numeric": querylint.TypeDecimal, "decimal": querylint.TypeDecimal,
		"money": querylint.TypeDecimal,
		"real":  querylint.TypeFloat, "float4": querylint.TypeFloat,
		"double precision": querylint.TypeFloat, "float8": querylint.TypeFloat,

		// Booleans
		"boolean": querylint.TypeBool, "bool": querylint.TypeBool,

		// Temporal
		"date": querylint.TypeDate,
		"time": querylint.TypeTime, "time without time zone": querylint.TypeTime,
		"time with time zone": querylint.TypeTime, "timetz": querylint.TypeTime,
		"timestamp": querylint.TypeDateTime, "timestamp without time zone": querylint.TypeDateTime,
		"timestamp with time zone": querylint.TypeDateTime, "timestamptz": querylint.TypeDateTime,

		// Other
		"bytea": querylint.TypeBinary,
		"json":  querylint.TypeJSON, "jsonb": querylint.TypeJSON,
	}}
}

func newMySQLTypeMapper() *typeMapper {
	return &typeMapper{exact: map[string]querylint.ColumnType{
		// Integer types
		"tinyint": querylint.TypeInt, "smallint": querylint.TypeInt,
		"mediumint": querylint.TypeInt, "int": querylint.TypeInt,
		"integer": querylint.TypeInt, "bigint": querylint.TypeInt,
		"year": querylint.TypeInt,

		// String types
		"char": querylint.TypeString, "varchar": querylint.TypeString,
		"tinytext": querylint.TypeString, "text": querylint.TypeString,
		"mediumtext": querylint.TypeString, "longtext": querylint.TypeString,
		"enum": querylint.TypeString, "set": querylint.TypeString,

		// Numbers
		"decimal": querylint.TypeDecimal, "numeric": querylint.TypeDecimal,
		"float": querylint.TypeFloat, "double": querylint.TypeFloat,

		// Temporal
		"date": querylint.TypeDate, "time": querylint.TypeTime,
		"datetime": querylint.TypeDateTime, "timestamp": querylint.TypeDateTime,

		// Other
		"binary": querylint.TypeBinary, "varbinary": querylint.TypeBinary,
		"tinyblob": querylint.TypeBinary, "blob": querylint.TypeBinary,
		"mediumblob": querylint.TypeBinary, "longblob": querylint.TypeBinary,
		"json": querylint.TypeJSON,
		"bit":  querylint.TypeBool,
	}}
}

func newSQLiteTypeMapper() *typeMapper {
	return &typeMapper{exact: map[string]querylint.ColumnType{
		"integer": querylint.TypeInt, "int": querylint.TypeInt,
		"text": querylint.TypeString, "varchar": querylint.TypeString,
		"real": querylint.TypeFloat, "numeric": querylint.TypeDecimal,
		"blob": querylint.TypeBinary, "boolean": querylint.TypeBool,
		"date": querylint.TypeDate, "datetime": querylint.TypeDateTime,
		"json": querylint.TypeJSON,
	}}
}

package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// Naming utilities that turn application attribute names into storage names.
// Every column name used by the statement builder is derived here, never taken
// from a request payload.

// pluralizeClient is shared; the client is read-only after construction.
var pluralizeClient = pluralizer.NewClient()

// =========================================================================
// Field name mapping
// =========================================================================

// ColumnName maps an attribute name such as "profTitleAssDate" to its column
// name "prof_title_ass_date". The name is split at internal uppercase
// boundaries, every segment is lowercased and segments are joined with '_'.
// A run of capitals is treated as one segment ("userID" -> "user_id",
// "HTTPServer" -> "http_server"). The function is pure.
func ColumnName(attribute string) string {
	if attribute == "" {
		return ""
	}

	runes := []rune(attribute)
	var b strings.Builder
	b.Grow(len(attribute) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// =========================================================================
// Strategies
// =========================================================================

// ColumnNamingStrategy defines how attribute names become column names.
type ColumnNamingStrategy interface {
	// ColumnName must return the same result for the same input.
	ColumnName(attribute string) string
}

// ColumnMapperFunc adapts a plain function to ColumnNamingStrategy.
type ColumnMapperFunc func(string) string

func (f ColumnMapperFunc) ColumnName(attribute string) string { return f(attribute) }

// SnakeCase is the default strategy and the one used by every registered entity.
var SnakeCase ColumnNamingStrategy = ColumnMapperFunc(ColumnName)

// ColumnNamingType represents different column naming conventions.
type ColumnNamingType int

const (
	ColumnSnakeCase  ColumnNamingType = iota // school_id, prof_title
	ColumnCamelCase                          // schoolId, profTitle
	ColumnPascalCase                         // SchoolId, ProfTitle
)

// NewColumnNamingStrategy creates a column naming strategy.
func NewColumnNamingStrategy(namingType ColumnNamingType) ColumnNamingStrategy {
	switch namingType {
	case ColumnCamelCase:
		return ColumnMapperFunc(toCamelCase)
	case ColumnPascalCase:
		return ColumnMapperFunc(toPascalCase)
	default:
		return SnakeCase
	}
}

// TableNamingStrategy defines how entity names become table names.
type TableNamingStrategy interface {
	TableName(entity string) string
}

// TableNamingType represents different table naming conventions.
type TableNamingType int

const (
	TableSnakeCaseSingular TableNamingType = iota // teacher, sys_role
	TableSnakeCasePlural                          // teachers, sys_roles
)

type tableNamingStrategy struct {
	namingType TableNamingType
}

// NewTableNamingStrategy creates a table naming strategy.
func NewTableNamingStrategy(namingType TableNamingType) TableNamingStrategy {
	return &tableNamingStrategy{namingType: namingType}
}

func (t *tableNamingStrategy) TableName(entity string) string {
	snake := ColumnName(entity)
	if t.namingType == TableSnakeCasePlural {
		return pluralize(snake)
	}
	return singularize(snake)
}

// =========================================================================
// Conversion helpers
// =========================================================================

func toCamelCase(name string) string {
	parts := strings.Split(ColumnName(name), "_")
	var b strings.Builder
	b.Grow(len(name))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func toPascalCase(name string) string {
	camel := toCamelCase(name)
	if camel == "" {
		return ""
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}

// pluralize pluralizes the last segment of a snake_case name.
func pluralize(name string) string {
	return inflectLast(name, func(w string) string { return pluralizeClient.Pluralize(w, 2, false) })
}

// singularize maps "teachers" and "sys_roles" to "teacher" and "sys_role".
func singularize(name string) string {
	return inflectLast(name, pluralizeClient.Singular)
}

func inflectLast(name string, inflect func(string) string) string {
	if name == "" {
		return ""
	}
	idx := strings.LastIndexByte(name, '_')
	head, last := name[:idx+1], name[idx+1:]
	return head + strings.ToLower(inflect(last))
}

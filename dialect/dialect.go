package dialect

// Dialect describes the pieces of SQL syntax the statement builder depends on.
type Dialect interface {
	Name() string

	// Placeholder renders the n-th positional parameter marker (1-based).
	Placeholder(n int) string

	// Placeholders returns the positional indices referenced by sql in order of
	// appearance. Markers inside quoted literals, quoted identifiers and comments
	// are ignored.
	Placeholders(sql string) []int
}

// IsIdentifier reports whether name is a plain, unquoted SQL identifier:
// an ASCII letter or underscore followed by letters, digits or underscores.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsQualifiedIdentifier accepts identifiers optionally qualified by a schema,
// such as "public.teacher".
func IsQualifiedIdentifier(name string) bool {
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			if !IsIdentifier(name[start:i]) {
				return false
			}
			start = i + 1
		}
	}
	return true
}

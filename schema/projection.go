package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Konsultn-Engineering/registrar/dialect"
)

var (
	ErrUnknownAttribute   = errors.New("unknown attribute")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrDuplicateAttribute = errors.New("duplicate attribute")
)

// FieldFlag marks how a field takes part in listings and updates.
type FieldFlag uint8

const (
	// Hidden fields are known to the projection but left out of SELECT lists.
	Hidden FieldFlag = 1 << iota
	// Updatable fields may appear in the SET list of a partial update.
	Updatable
	// Nullable fields accept an explicit null in a partial update.
	Nullable
)

// FieldSpec declares one field of a projection.
type FieldSpec struct {
	attribute string
	column    string
	flags     FieldFlag
}

// Attr declares a field whose column name is derived by the naming strategy.
func Attr(attribute string, flags ...FieldFlag) FieldSpec {
	spec := FieldSpec{attribute: attribute}
	for _, f := range flags {
		spec.flags |= f
	}
	return spec
}

// Column overrides the derived column name.
func (s FieldSpec) Column(name string) FieldSpec {
	s.column = name
	return s
}

// Field describes one attribute/column pair of an entity.
type Field struct {
	Attribute string
	Column    string
	Hidden    bool
	Updatable bool
	Nullable  bool
}

// Projection is the whitelist of attributes and columns known for one entity.
// It is built once and never mutated afterwards.
type Projection struct {
	table       string
	key         int
	fields      []Field
	byAttribute map[string]int
	byColumn    map[string]int

	// comma-joined column lists keyed by their exclusion set
	lists *lru.Cache[string, string]
}

type projectionConfig struct {
	naming    ColumnNamingStrategy
	tables    TableNamingStrategy
	key       string
	cacheSize int
}

type ProjectionOption func(*projectionConfig)

// WithNaming sets the strategy used to derive column names.
func WithNaming(strategy ColumnNamingStrategy) ProjectionOption {
	return func(c *projectionConfig) { c.naming = strategy }
}

// WithTableNaming sets the strategy EntityProjection uses to derive the
// table name. Defaults to singular snake case.
func WithTableNaming(strategy TableNamingStrategy) ProjectionOption {
	return func(c *projectionConfig) { c.tables = strategy }
}

// WithKey names the primary key attribute. Defaults to "id".
func WithKey(attribute string) ProjectionOption {
	return func(c *projectionConfig) { c.key = attribute }
}

// WithListCacheSize bounds the number of cached column lists.
func WithListCacheSize(size int) ProjectionOption {
	return func(c *projectionConfig) { c.cacheSize = size }
}

// NewProjection validates every identifier and builds the lookup tables.
func NewProjection(table string, specs []FieldSpec, opts ...ProjectionOption) (*Projection, error) {
	cfg := projectionConfig{naming: SnakeCase, key: "id", cacheSize: 32}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !dialect.IsQualifiedIdentifier(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}

	p := &Projection{
		table:       table,
		key:         -1,
		fields:      make([]Field, 0, len(specs)),
		byAttribute: make(map[string]int, len(specs)),
		byColumn:    make(map[string]int, len(specs)),
	}

	for _, spec := range specs {
		if !isAttributeName(spec.attribute) {
			return nil, fmt.Errorf("%w: attribute %q", ErrInvalidIdentifier, spec.attribute)
		}
		column := spec.column
		if column == "" {
			column = cfg.naming.ColumnName(spec.attribute)
		}
		if !dialect.IsIdentifier(column) {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column)
		}
		if _, dup := p.byAttribute[spec.attribute]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAttribute, spec.attribute)
		}
		if _, dup := p.byColumn[column]; dup {
			return nil, fmt.Errorf("%w: column %q", ErrDuplicateAttribute, column)
		}

		idx := len(p.fields)
		p.fields = append(p.fields, Field{
			Attribute: spec.attribute,
			Column:    column,
			Hidden:    spec.flags&Hidden != 0,
			Updatable: spec.flags&Updatable != 0,
			Nullable:  spec.flags&Nullable != 0,
		})
		p.byAttribute[spec.attribute] = idx
		p.byColumn[column] = idx
		if spec.attribute == cfg.key {
			p.key = idx
		}
	}

	if p.key < 0 {
		return nil, fmt.Errorf("%w: key %q", ErrUnknownAttribute, cfg.key)
	}

	lists, err := lru.New[string, string](cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	p.lists = lists

	return p, nil
}

// MustProjection is NewProjection for package-level declarations.
// EntityProjection is NewProjection with the table named after entity by
// the configured table naming strategy.
func EntityProjection(entity string, specs []FieldSpec, opts ...ProjectionOption) (*Projection, error) {
	cfg := projectionConfig{tables: NewTableNamingStrategy(TableSnakeCaseSingular)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewProjection(cfg.tables.TableName(entity), specs, opts...)
}

// MustEntityProjection is like EntityProjection but panics on error.
func MustEntityProjection(entity string, specs []FieldSpec, opts ...ProjectionOption) *Projection {
	p, err := EntityProjection(entity, specs, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func MustProjection(table string, specs []FieldSpec, opts ...ProjectionOption) *Projection {
	p, err := NewProjection(table, specs, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Projection) Table() string { return p.table }

// Key returns the primary key field.
func (p *Projection) Key() Field { return p.fields[p.key] }

// Fields returns a copy of the field descriptors in declaration order.
func (p *Projection) Fields() []Field {
	return slices.Clone(p.fields)
}

// Field looks up a field by attribute name.
func (p *Projection) Field(attribute string) (Field, bool) {
	idx, ok := p.byAttribute[attribute]
	if !ok {
		return Field{}, false
	}
	return p.fields[idx], true
}

// Column resolves an attribute name to its column.
func (p *Projection) Column(attribute string) (string, error) {
	idx, ok := p.byAttribute[attribute]
	if !ok {
		return "", fmt.Errorf("%w: %q on %s", ErrUnknownAttribute, attribute, p.table)
	}
	return p.fields[idx].Column, nil
}

// HasColumn reports whether column belongs to the projection.
func (p *Projection) HasColumn(column string) bool {
	_, ok := p.byColumn[column]
	return ok
}

// Columns returns the visible columns in declaration order, leaving out any
// column named in excluded.
func (p *Projection) Columns(excluded ...string) []string {
	columns := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		if f.Hidden || slices.Contains(excluded, f.Column) {
			continue
		}
		columns = append(columns, f.Column)
	}
	return columns
}

// ColumnList is Columns joined with ", ".
func (p *Projection) ColumnList(excluded ...string) string {
	key := exclusionKey(excluded)
	if list, ok := p.lists.Get(key); ok {
		return list
	}
	list := strings.Join(p.Columns(excluded...), ", ")
	p.lists.Add(key, list)
	return list
}

func exclusionKey(excluded []string) string {
	if len(excluded) == 0 {
		return ""
	}
	sorted := slices.Clone(excluded)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}

// isAttributeName accepts letters and digits, starting with a letter.
func isAttributeName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

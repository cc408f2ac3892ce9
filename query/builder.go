package query

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/registrar/dialect"
	"github.com/Konsultn-Engineering/registrar/schema"
)

type state uint8

const (
	stateIdle state = iota
	stateBuilding
	stateBuilt
)

type kind uint8

const (
	kindSelect kind = iota + 1
	kindUpdate
)

// clause tracks how far a statement has progressed; clauses may only be
// appended in this order.
type clause uint8

const (
	clauseNone clause = iota
	clauseSet
	clauseJoin
	clauseWhere
	clauseOrder
	clauseLimit
	clauseOffset
)

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{buf: make([]byte, 0, 256), params: make([]any, 0, 16)}
	},
}

// Statement is a built SQL text and its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Builder assembles one parameterized statement against one table.
//
// Every placeholder is written in the same call that appends its parameter,
// so absent criteria never leave gaps in the $n sequence. Misuse is recorded
// on the builder and reported by Build; a statement with an error is never
// returned. A Builder is owned by a single goroutine.
type Builder struct {
	table      string
	naming     schema.ColumnNamingStrategy
	dialect    dialect.Dialect
	projection *schema.Projection
	initErr    error

	buf        []byte
	params     []any
	next       int
	state      state
	kind       kind
	clause     clause
	predicates int
	sets       int

	// pending "WHERE <key> = $1" of a keyed update
	trailer string

	errs []error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNaming sets the attribute to column mapper used when no projection is
// attached. Defaults to schema.SnakeCase.
func WithNaming(strategy schema.ColumnNamingStrategy) BuilderOption {
	return func(b *Builder) { b.naming = strategy }
}

// WithDialect overrides the PostgreSQL default.
func WithDialect(d dialect.Dialect) BuilderOption {
	return func(b *Builder) { b.dialect = d }
}

// ForProjection resolves every attribute through p and rejects attributes p
// does not know.
func ForProjection(p *schema.Projection) BuilderOption {
	return func(b *Builder) { b.projection = p }
}

// NewBuilder returns an idle builder for table. A malformed table name is
// reported by Build.
func NewBuilder(table string, opts ...BuilderOption) *Builder {
	b := builderPool.Get().(*Builder)
	b.table = table
	b.naming = schema.SnakeCase
	b.dialect = dialect.Postgres{}
	b.projection = nil
	b.initErr = nil
	for _, opt := range opts {
		opt(b)
	}
	if !dialect.IsQualifiedIdentifier(table) {
		b.initErr = Invalid("table", fmt.Errorf("%w: %q", ErrInvalidIdentifier, table))
	}
	b.Clear()
	return b
}

// For returns a builder bound to the projection's table and whitelist.
func For(p *schema.Projection, opts ...BuilderOption) *Builder {
	return NewBuilder(p.Table(), append([]BuilderOption{ForProjection(p)}, opts...)...)
}

// Release returns the builder to the pool. Statements already built stay
// valid; the builder must not be used afterwards.
func (b *Builder) Release() {
	b.Clear()
	b.projection = nil
	b.naming = nil
	b.dialect = nil
	builderPool.Put(b)
}

// Clear discards text, parameters and errors and returns to the idle state.
func (b *Builder) Clear() *Builder {
	b.buf = b.buf[:0]
	clear(b.params)
	b.params = b.params[:0]
	b.next = 1
	b.state = stateIdle
	b.kind = 0
	b.clause = clauseNone
	b.predicates = 0
	b.sets = 0
	b.trailer = ""
	b.errs = b.errs[:0]
	return b
}

// =========================================================================
// Statement starts
// =========================================================================

// Select starts "SELECT <columns> FROM <table>". The producer must return
// trusted text; "*" is used when it returns nothing.
func (b *Builder) Select(columns func() string) *Builder {
	list := ""
	if columns != nil {
		list = strings.TrimSpace(columns())
	}
	if list == "" {
		list = "*"
	}
	return b.start(kindSelect, "SELECT ", list, " FROM ", b.table, " ")
}

// SelectFor selects the visible columns of p, minus the excluded columns.
func (b *Builder) SelectFor(p *schema.Projection, excluded ...string) *Builder {
	if b.projection == nil {
		b.projection = p
	}
	return b.Select(func() string { return p.ColumnList(excluded...) })
}

// SelectCount starts "SELECT count(*) FROM <table>".
func (b *Builder) SelectCount() *Builder {
	return b.Select(func() string { return "count(*)" })
}

// Update starts "UPDATE <table>".
func (b *Builder) Update() *Builder {
	return b.start(kindUpdate, "UPDATE ", b.table, " ")
}

// UpdateKey starts an update identified by key. The key is bound as $1 and
// "WHERE <key> = $1" follows the SET list.
func (b *Builder) UpdateKey(key Criterion) *Builder {
	b.Update()
	if !key.present || key.null {
		b.AddError(Invalid(key.Attribute, ErrMissingKey))
		return b
	}
	col, ok := b.resolve(key.Attribute)
	if !ok {
		return b
	}
	b.trailer = "WHERE " + OpEqual.render(col, b.bind(key.value)) + " "
	return b
}

func (b *Builder) start(k kind, parts ...string) *Builder {
	b.Clear()
	b.state = stateBuilding
	b.kind = k
	b.write(parts...)
	return b
}

// =========================================================================
// Assignments
// =========================================================================

// Set appends "SET col = $n" for the first present criterion and
// ", col = $n" for the following ones. Absent criteria are skipped; a
// present null binds SQL NULL.
func (b *Builder) Set(cs ...Criterion) *Builder {
	for _, c := range cs {
		if !c.present {
			continue
		}
		if !b.started() {
			return b
		}
		if b.kind != kindUpdate || b.clause > clauseSet {
			b.AddError(fmt.Errorf("%w: SET %s", ErrClauseOrder, c.Attribute))
			return b
		}
		col, ok := b.resolve(c.Attribute)
		if !ok {
			return b
		}
		if b.sets == 0 {
			b.write("SET ")
			b.clause = clauseSet
		} else {
			b.buf = append(b.buf[:len(b.buf)-1], ", "...)
		}
		b.write(OpEqual.render(col, b.bind(c.value)), " ")
		b.sets++
	}
	return b
}

// =========================================================================
// Predicates
// =========================================================================

// BeginWhere opens a bare WHERE clause. Followed only by absent criteria it
// leaves a dangling "WHERE"; see Dangling.
func (b *Builder) BeginWhere() *Builder {
	if !b.started() {
		return b
	}
	b.flushTrailer()
	b.openWhere()
	return b
}

// WhereRaw opens WHERE with a trusted, unparameterized fragment such as
// "is_enable = true".
func (b *Builder) WhereRaw(fragment string) *Builder {
	if !b.started() {
		return b
	}
	b.flushTrailer()
	if b.openWhere() {
		b.raw("", fragment)
	}
	return b
}

// Where opens WHERE with c. An absent c is a no-op and leaves the clause
// closed.
func (b *Builder) Where(c Criterion) *Builder {
	if !c.present || !b.started() {
		return b
	}
	b.flushTrailer()
	if b.openWhere() {
		b.predicate("", c)
	}
	return b
}

// And appends each present criterion with AND, in order. If no WHERE clause
// is open yet the first present criterion opens it.
func (b *Builder) And(cs ...Criterion) *Builder {
	return b.chain(connAnd, cs)
}

// Or is And with OR.
func (b *Builder) Or(cs ...Criterion) *Builder {
	return b.chain(connOr, cs)
}

// AndRaw appends a trusted fragment with AND.
func (b *Builder) AndRaw(fragment string) *Builder {
	return b.chainRaw(connAnd, fragment)
}

// OrRaw appends a trusted fragment with OR.
func (b *Builder) OrRaw(fragment string) *Builder {
	return b.chainRaw(connOr, fragment)
}

func (b *Builder) chain(conn string, cs []Criterion) *Builder {
	for _, c := range cs {
		if !c.present {
			continue
		}
		if !b.started() || !b.continueWhere() {
			return b
		}
		b.predicate(conn, c)
	}
	return b
}

func (b *Builder) chainRaw(conn, fragment string) *Builder {
	if strings.TrimSpace(fragment) == "" || !b.started() || !b.continueWhere() {
		return b
	}
	b.raw(conn, fragment)
	return b
}

// openWhere writes "WHERE " if no WHERE clause exists yet.
func (b *Builder) openWhere() bool {
	if b.clause >= clauseWhere {
		b.AddError(fmt.Errorf("%w: WHERE already written", ErrClauseOrder))
		return false
	}
	b.write("WHERE ")
	b.clause = clauseWhere
	b.predicates = 0
	return true
}

// continueWhere makes sure a WHERE clause is open for AND/OR.
func (b *Builder) continueWhere() bool {
	b.flushTrailer()
	switch {
	case b.clause == clauseWhere:
		return true
	case b.clause < clauseWhere:
		return b.openWhere()
	default:
		b.AddError(fmt.Errorf("%w: predicate after ORDER BY or LIMIT", ErrClauseOrder))
		return false
	}
}

func (b *Builder) predicate(conn string, c Criterion) {
	col, ok := b.resolve(c.Attribute)
	if !ok {
		return
	}
	op := c.op()
	if !op.valid() {
		b.AddError(Invalid(c.Attribute, fmt.Errorf("unsupported operator %q", op)))
		return
	}

	var expr string
	switch {
	case c.null && op == OpEqual:
		expr = col + " IS NULL"
	case c.null && op == OpNotEqual:
		expr = col + " IS NOT NULL"
	case c.null:
		b.AddError(Invalid(c.Attribute, fmt.Errorf("%w: operator %s", ErrNotNullable, op)))
		return
	default:
		expr = op.render(col, b.bind(c.value))
	}

	b.connector(conn)
	b.write(expr, " ")
	b.predicates++
}

func (b *Builder) raw(conn, fragment string) {
	b.connector(conn)
	b.write(strings.TrimSpace(fragment), " ")
	b.predicates++
}

// connector is elided for the first predicate of a clause.
func (b *Builder) connector(conn string) {
	if conn != "" && b.predicates > 0 {
		b.write(conn, " ")
	}
}

// flushTrailer writes the pending key predicate of a keyed update.
func (b *Builder) flushTrailer() {
	if b.trailer == "" {
		return
	}
	b.write(b.trailer)
	b.trailer = ""
	b.clause = clauseWhere
	b.predicates = 1
}

// =========================================================================
// Joins, ordering, paging
// =========================================================================

// LeftJoin appends "LEFT JOIN <table>". The producer must return trusted text.
func (b *Builder) LeftJoin(table func() string) *Builder {
	return b.static(clauseJoin, "LEFT JOIN", table)
}

// On appends "ON <condition>" to the preceding join.
func (b *Builder) On(condition func() string) *Builder {
	if b.started() && b.clause != clauseJoin {
		b.AddError(fmt.Errorf("%w: ON without LEFT JOIN", ErrClauseOrder))
		return b
	}
	return b.static(clauseJoin, "ON", condition)
}

// OrderBy appends "ORDER BY <expression>"; later calls extend the list. The
// producer must return a validated column expression.
func (b *Builder) OrderBy(expression func() string) *Builder {
	if b.clause == clauseOrder && b.kind == kindSelect {
		if expr := produce(expression); expr != "" {
			b.buf = append(b.buf[:len(b.buf)-1], ", "...)
			b.write(expr, " ")
		}
		return b
	}
	return b.static(clauseOrder, "ORDER BY", expression)
}

// OrderByColumn orders by the column of attribute.
func (b *Builder) OrderByColumn(attribute string, dir Direction) *Builder {
	if !b.started() {
		return b
	}
	col, ok := b.resolve(attribute)
	if !ok {
		return b
	}
	if dir == "" {
		dir = Asc
	}
	if !dir.valid() {
		b.AddError(Invalid("direction", fmt.Errorf("%w: direction %q", ErrInvalidPage, dir)))
		return b
	}
	return b.OrderBy(func() string { return col + " " + string(dir) })
}

// Limit binds size as the LIMIT parameter.
func (b *Builder) Limit(size int64) *Builder {
	return b.paging(clauseLimit, "LIMIT ", size)
}

// Offset binds offset as the OFFSET parameter.
func (b *Builder) Offset(offset int64) *Builder {
	return b.paging(clauseOffset, "OFFSET ", offset)
}

func (b *Builder) static(c clause, keyword string, producer func() string) *Builder {
	if !b.started() {
		return b
	}
	text := produce(producer)
	if text == "" {
		return b
	}
	if b.kind != kindSelect || b.clause > c || (c != clauseJoin && b.clause == c) {
		b.AddError(fmt.Errorf("%w: %s", ErrClauseOrder, keyword))
		return b
	}
	b.write(keyword, " ", text, " ")
	b.clause = c
	return b
}

func (b *Builder) paging(c clause, keyword string, v int64) *Builder {
	if !b.started() {
		return b
	}
	if b.kind != kindSelect || b.clause >= c {
		b.AddError(fmt.Errorf("%w: %s", ErrClauseOrder, strings.TrimSpace(keyword)))
		return b
	}
	b.write(keyword, b.bind(v), " ")
	b.clause = c
	return b
}

func produce(f func() string) string {
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f())
}

// =========================================================================
// Build
// =========================================================================

// Build returns the trimmed text and a copy of the parameters. It can be
// called repeatedly; the output is stable until the next mutating call.
func (b *Builder) Build() (Statement, error) {
	if b.initErr != nil {
		return Statement{}, b.initErr
	}
	if err := b.Err(); err != nil {
		return Statement{}, err
	}
	if b.state == stateIdle {
		return Statement{}, ErrNotStarted
	}

	text := strings.TrimSpace(b.Text())
	if err := b.verify(text); err != nil {
		return Statement{}, err
	}

	b.state = stateBuilt
	return Statement{SQL: text, Args: slices.Clone(b.params)}, nil
}

// verify checks that text references each of $1..$len(params) exactly once.
func (b *Builder) verify(text string) error {
	if len(b.params) != b.next-1 {
		return fmt.Errorf("%w: %d parameters, next index %d", ErrInvariant, len(b.params), b.next)
	}
	refs := b.dialect.Placeholders(text)
	if len(refs) != len(b.params) {
		return fmt.Errorf("%w: %d placeholders for %d parameters", ErrInvariant, len(refs), len(b.params))
	}
	seen := make([]bool, len(b.params)+1)
	for _, n := range refs {
		if n < 1 || n > len(b.params) || seen[n] {
			return fmt.Errorf("%w: unexpected placeholder $%d", ErrInvariant, n)
		}
		seen[n] = true
	}
	return nil
}

// Text is the statement text so far, including a pending update key.
func (b *Builder) Text() string {
	if b.trailer == "" {
		return string(b.buf)
	}
	return string(b.buf) + b.trailer
}

// Params returns a copy of the bound parameters.
func (b *Builder) Params() []any { return slices.Clone(b.params) }

// NextIndex is the index the next bound parameter will get.
func (b *Builder) NextIndex() int { return b.next }

// Dangling reports an open WHERE clause without any predicate.
func (b *Builder) Dangling() bool {
	return b.clause == clauseWhere && b.predicates == 0 && b.trailer == ""
}

func (b *Builder) String() string { return b.Text() }

// =========================================================================
// Errors
// =========================================================================

// AddError records err; the first recorded error is returned by Build.
func (b *Builder) AddError(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// HasErrors reports whether any error was recorded since the last Clear.
func (b *Builder) HasErrors() bool { return len(b.errs) > 0 }

// Errors returns all recorded errors.
func (b *Builder) Errors() []error { return slices.Clone(b.errs) }

// Err returns the first recorded error or nil.
func (b *Builder) Err() error {
	if len(b.errs) > 0 {
		return b.errs[0]
	}
	return nil
}

// =========================================================================
// Helpers
// =========================================================================

// bind appends v and returns its placeholder. It is the only place a
// parameter is added.
func (b *Builder) bind(v any) string {
	b.params = append(b.params, v)
	ph := b.dialect.Placeholder(b.next)
	b.next++
	return ph
}

func (b *Builder) write(parts ...string) {
	for _, p := range parts {
		b.buf = append(b.buf, p...)
	}
	if b.state == stateBuilt {
		b.state = stateBuilding
	}
}

func (b *Builder) started() bool {
	if b.state == stateIdle {
		b.AddError(ErrNotStarted)
		return false
	}
	return true
}

// resolve maps an attribute to a column through the projection when one is
// attached, otherwise through the naming strategy.
func (b *Builder) resolve(attribute string) (string, bool) {
	if b.projection != nil {
		col, err := b.projection.Column(attribute)
		if err != nil {
			b.AddError(Invalid(attribute, err))
			return "", false
		}
		return col, true
	}
	col := b.naming.ColumnName(attribute)
	if !dialect.IsIdentifier(col) {
		b.AddError(Invalid(attribute, fmt.Errorf("%w: %q", ErrInvalidIdentifier, col)))
		return "", false
	}
	return col, true
}

func (c Criterion) op() Operator {
	if c.Operator == "" {
		return OpEqual
	}
	return c.Operator
}

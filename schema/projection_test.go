package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProjection(t *testing.T) *Projection {
	t.Helper()
	p, err := NewProjection("teacher", []FieldSpec{
		Attr("id"),
		Attr("name", Updatable),
		Attr("schoolId", Updatable),
		Attr("remark", Updatable, Nullable),
		Attr("createTime", Hidden),
		Attr("legacyCode").Column("code"),
	})
	require.NoError(t, err)
	return p
}

func TestNewProjection(t *testing.T) {
	p := sampleProjection(t)

	assert.Equal(t, "teacher", p.Table())
	assert.Equal(t, "id", p.Key().Column)
	assert.Len(t, p.Fields(), 6)

	f, ok := p.Field("schoolId")
	require.True(t, ok)
	assert.Equal(t, Field{Attribute: "schoolId", Column: "school_id", Updatable: true}, f)

	f, ok = p.Field("remark")
	require.True(t, ok)
	assert.True(t, f.Nullable)

	col, err := p.Column("legacyCode")
	require.NoError(t, err)
	assert.Equal(t, "code", col)

	assert.True(t, p.HasColumn("create_time"))
	assert.False(t, p.HasColumn("createTime"))
}

func TestProjectionUnknownAttribute(t *testing.T) {
	p := sampleProjection(t)
	_, err := p.Column("password")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, ok := p.Field("name; DROP TABLE teacher")
	assert.False(t, ok)
}

func TestProjectionColumns(t *testing.T) {
	p := sampleProjection(t)

	assert.Equal(t, []string{"id", "name", "school_id", "remark", "code"}, p.Columns())
	assert.Equal(t, "id, name, school_id, remark, code", p.ColumnList())
	assert.Equal(t, "id, name, code", p.ColumnList("remark", "school_id"))
	// cached entries are keyed by the set, not the order
	assert.Equal(t, "id, name, code", p.ColumnList("school_id", "remark", "remark"))
	assert.Equal(t, "id, name, school_id, remark, code", p.ColumnList())
}

func TestNewProjectionRejectsMalformedIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		table string
		specs []FieldSpec
		want  error
	}{
		{"bad table", "teacher;", []FieldSpec{Attr("id")}, ErrInvalidIdentifier},
		{"bad attribute", "teacher", []FieldSpec{Attr("id"), Attr("first_name")}, ErrInvalidIdentifier},
		{"bad column", "teacher", []FieldSpec{Attr("id"), Attr("name").Column("name--")}, ErrInvalidIdentifier},
		{"duplicate attribute", "teacher", []FieldSpec{Attr("id"), Attr("id")}, ErrDuplicateAttribute},
		{"duplicate column", "teacher", []FieldSpec{Attr("id"), Attr("schoolId"), Attr("other").Column("school_id")}, ErrDuplicateAttribute},
		{"missing key", "teacher", []FieldSpec{Attr("name")}, ErrUnknownAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProjection(tt.table, tt.specs)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, p)
		})
	}
}

func TestProjectionWithOptions(t *testing.T) {
	p, err := NewProjection("public.student", []FieldSpec{Attr("no"), Attr("enterDate")},
		WithKey("no"), WithNaming(NewColumnNamingStrategy(ColumnCamelCase)), WithListCacheSize(2))
	require.NoError(t, err)
	assert.Equal(t, "no", p.Key().Attribute)
	assert.Equal(t, []string{"no", "enterDate"}, p.Columns())
}

func TestEntityProjection(t *testing.T) {
	specs := []FieldSpec{Attr("id"), Attr("name")}

	p, err := EntityProjection("Teacher", specs)
	require.NoError(t, err)
	assert.Equal(t, "teacher", p.Table())

	p, err = EntityProjection("SysRole", specs, WithTableNaming(NewTableNamingStrategy(TableSnakeCasePlural)))
	require.NoError(t, err)
	assert.Equal(t, "sys_roles", p.Table())

	_, err = EntityProjection("", specs)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Panics(t, func() { MustEntityProjection("", specs) })
}

func TestMustProjectionPanics(t *testing.T) {
	assert.Panics(t, func() { MustProjection("", nil) })
}

type registeredEntity struct{}
type unregisteredEntity struct{}

func TestRegistry(t *testing.T) {
	p := sampleProjection(t)
	Register[registeredEntity](p)

	got, ok := Lookup[registeredEntity]()
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Same(t, p, MustLookup[registeredEntity]())

	_, ok = Lookup[unregisteredEntity]()
	assert.False(t, ok)
	assert.Panics(t, func() { MustLookup[unregisteredEntity]() })
}

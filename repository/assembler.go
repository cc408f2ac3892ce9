package repository

import (
	"fmt"

	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/schema"
)

// Listing holds the three statements of one paged search. Count and Page
// share Base's parameters as a prefix; Page adds size and offset last.
type Listing struct {
	Base  query.Statement
	Count query.Statement
	Page  query.Statement
}

type listingConfig struct {
	conditions  []string
	maxPageSize int64
	builder     []query.BuilderOption
}

// ListingOption configures AssembleListing.
type ListingOption func(*listingConfig)

// WithCondition adds a trusted, unparameterized predicate such as
// "is_enable = true" to every statement of the listing.
func WithCondition(fragment string) ListingOption {
	return func(c *listingConfig) { c.conditions = append(c.conditions, fragment) }
}

// WithMaxPageSize caps PageRequest.Size.
func WithMaxPageSize(n int64) ListingOption {
	return func(c *listingConfig) { c.maxPageSize = n }
}

// WithBuilderOptions configures the builder the statements are rendered
// with, such as its dialect.
func WithBuilderOptions(opts ...query.BuilderOption) ListingOption {
	return func(c *listingConfig) { c.builder = append(c.builder, opts...) }
}

// AssembleListing validates filters and page against p and builds the base,
// count and page statements. No WHERE clause is written when no filter is
// present and no condition is configured.
func AssembleListing(p *schema.Projection, filters query.Criteria, page query.PageRequest, opts ...ListingOption) (Listing, error) {
	var cfg listingConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sortColumn, err := page.Validate(p, cfg.maxPageSize)
	if err != nil {
		return Listing{}, err
	}
	for _, c := range filters {
		if _, ok := p.Field(c.Attribute); !ok {
			return Listing{}, query.Invalid(c.Attribute, fmt.Errorf("%w: %q on %s", query.ErrUnknownAttribute, c.Attribute, p.Table()))
		}
	}

	where := func(b *query.Builder) *query.Builder {
		for _, fragment := range cfg.conditions {
			b.AndRaw(fragment)
		}
		return b.And(filters...)
	}

	b := query.For(p, cfg.builder...)
	defer b.Release()

	var l Listing
	if l.Base, err = where(b.SelectFor(p)).Build(); err != nil {
		return Listing{}, err
	}
	if l.Count, err = where(b.SelectCount()).Build(); err != nil {
		return Listing{}, err
	}

	order := sortColumn + " " + string(page.OrderDirection())
	l.Page, err = where(b.SelectFor(p)).
		OrderBy(func() string { return order }).
		Limit(page.Size).
		Offset(page.Offset).
		Build()
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}

// AssembleUpdate builds "UPDATE <table> SET <present fields> WHERE <key> = $1".
// Every field must be known to p and marked updatable; an explicit null is
// only accepted for nullable fields. At least one field must be present.
func AssembleUpdate(p *schema.Projection, key query.Criterion, fields query.Criteria, opts ...query.BuilderOption) (query.Statement, error) {
	keyField := p.Key()
	if key.Attribute == "" {
		key.Attribute = keyField.Attribute
	}
	if key.Attribute != keyField.Attribute || !key.IsPresent() || key.IsNull() {
		return query.Statement{}, query.Invalid(keyField.Attribute, query.ErrMissingKey)
	}

	for _, c := range fields {
		f, ok := p.Field(c.Attribute)
		switch {
		case !ok:
			return query.Statement{}, query.Invalid(c.Attribute, fmt.Errorf("%w: %q on %s", query.ErrUnknownAttribute, c.Attribute, p.Table()))
		case !c.IsPresent():
			continue
		case !f.Updatable || f.Attribute == keyField.Attribute:
			return query.Statement{}, query.Invalid(c.Attribute, query.ErrNotUpdatable)
		case c.IsNull() && !f.Nullable:
			return query.Statement{}, query.Invalid(c.Attribute, query.ErrNotNullable)
		}
	}
	if fields.Present() == 0 {
		return query.Statement{}, query.Invalid("", query.ErrNoFields)
	}

	b := query.For(p, opts...)
	defer b.Release()
	return b.UpdateKey(key).Set(fields...).Build()
}

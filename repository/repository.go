// Package repository runs the listing and partial-update statements of the
// registrar entities on a pooled connection.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Konsultn-Engineering/registrar/database"
	"github.com/Konsultn-Engineering/registrar/dialect"
	"github.com/Konsultn-Engineering/registrar/logging"
	"github.com/Konsultn-Engineering/registrar/metrics"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/schema"
)

// ErrNotFound is returned when an update matched no row.
var ErrNotFound = errors.New("record not found")

// Page is one page of a listing together with the total number of matches.
type Page[T any] struct {
	Content     []T   `json:"content"`
	ItemsLength int64 `json:"itemsLength"`
}

// Option configures a repository.
type Option func(*options)

type options struct {
	maxPageSize  int64
	queryTimeout time.Duration
	conditions   []string
	builder      []query.BuilderOption
}

// WithPageLimit caps the page size callers may request.
func WithPageLimit(n int64) Option {
	return func(o *options) { o.maxPageSize = n }
}

// WithQueryTimeout bounds each logical operation.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

// WithDialect renders statements for d instead of the PostgreSQL default.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.builder = append(o.builder, query.WithDialect(d)) }
}

// WithListingCondition adds a trusted predicate to every listing.
func WithListingCondition(fragment string) Option {
	return func(o *options) { o.conditions = append(o.conditions, fragment) }
}

// store executes the statements of one entity type. T is the row type and
// scan returns the entity and the destinations for its visible columns.
type store[T any] struct {
	entity     string
	projection *schema.Projection
	pool       database.Pool
	opts       options
	scan       func() (*T, []any)
}

func newStore[T any](entity string, pool database.Pool, scan func() (*T, []any), opts []Option) store[T] {
	s := store[T]{
		entity:     entity,
		projection: schema.MustLookup[T](),
		pool:       pool,
		scan:       scan,
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *store[T]) page(ctx context.Context, filters query.Criteria, req query.PageRequest) (Page[T], error) {
	listingOpts := []ListingOption{
		WithMaxPageSize(s.opts.maxPageSize),
		WithBuilderOptions(s.opts.builder...),
	}
	for _, c := range s.opts.conditions {
		listingOpts = append(listingOpts, WithCondition(c))
	}

	listing, err := AssembleListing(s.projection, filters, req, listingOpts...)
	if err != nil {
		return Page[T]{}, s.rejected(ctx, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := Page[T]{Content: []T{}}
	err = database.WithConn(ctx, s.pool, func(conn database.Conn) error {
		err := s.timed(metrics.KindCount, func() error {
			return conn.QueryRow(ctx, listing.Count.SQL, listing.Count.Args...).Scan(&out.ItemsLength)
		})
		if err != nil {
			return fmt.Errorf("count %s: %w", s.entity, err)
		}
		if out.ItemsLength == 0 || req.Offset >= out.ItemsLength {
			return nil
		}

		return s.timed(metrics.KindPage, func() error {
			rows, err := conn.Query(ctx, listing.Page.SQL, listing.Page.Args...)
			if err != nil {
				return fmt.Errorf("page %s: %w", s.entity, err)
			}
			defer rows.Close()

			for rows.Next() {
				item, dest := s.scan()
				if err := rows.Scan(dest...); err != nil {
					return fmt.Errorf("scan %s: %w", s.entity, err)
				}
				out.Content = append(out.Content, *item)
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("page %s: %w", s.entity, err)
			}
			return nil
		})
	})
	if err != nil {
		return Page[T]{}, err
	}

	logging.Ctx(ctx).Debug().
		Str("entity", s.entity).
		Int64("items", out.ItemsLength).
		Int("returned", len(out.Content)).
		Msg("page loaded")
	return out, nil
}

func (s *store[T]) update(ctx context.Context, key query.Criterion, fields query.Criteria) error {
	stmt, err := AssembleUpdate(s.projection, key, fields, s.opts.builder...)
	if err != nil {
		return s.rejected(ctx, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = database.WithConn(ctx, s.pool, func(conn database.Conn) error {
		return s.timed(metrics.KindUpdate, func() error {
			res, err := conn.Exec(ctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return fmt.Errorf("update %s: %w", s.entity, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update %s: %w", s.entity, err)
			}
			if n == 0 {
				return ErrNotFound
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	id, _ := key.Value()
	logging.Ctx(ctx).Debug().
		Str("entity", s.entity).
		Interface("id", id).
		Int("fields", fields.Present()).
		Msg("record updated")
	return nil
}

// rejected records a failure raised before any statement was executed.
func (s *store[T]) rejected(ctx context.Context, err error) error {
	if errors.Is(err, query.ErrValidation) {
		metrics.RecordRejection(s.entity, query.Reason(err))
		return err
	}
	logging.Ctx(ctx).Error().Err(err).Str("entity", s.entity).Msg("statement assembly failed")
	return err
}

func (s *store[T]) timed(kind string, fn func() error) error {
	start := time.Now()
	err := fn()
	if errors.Is(err, ErrNotFound) {
		metrics.RecordStatement(s.entity, kind, time.Since(start), nil)
		return err
	}
	metrics.RecordStatement(s.entity, kind, time.Since(start), err)
	return err
}

func (s *store[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.queryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.queryTimeout)
	}
	return ctx, func() {}
}

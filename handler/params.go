package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/registrar/optional"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/repository"
)

// params decodes optional listing filters from a query string. The first
// parse error is kept and later calls become no-ops.
type params struct {
	values url.Values
	err    error
}

func newParams(values url.Values) *params {
	return &params{values: values}
}

// raw returns the trimmed value of name. A missing or blank value is absent.
func (p *params) raw(name string) (string, bool) {
	s := strings.TrimSpace(p.values.Get(name))
	return s, s != ""
}

func param[T any](p *params, name string, parse func(string) (T, error)) optional.Value[T] {
	s, ok := p.raw(name)
	if !ok || p.err != nil {
		return optional.Empty[T]()
	}
	v, err := parse(s)
	if err != nil {
		p.err = query.Invalid(name, fmt.Errorf("invalid value %q", s))
		return optional.Empty[T]()
	}
	return optional.Of(v)
}

func (p *params) Str(name string) optional.Value[string] {
	return param(p, name, func(s string) (string, error) { return s, nil })
}

func (p *params) Int64(name string) optional.Value[int64] {
	return param(p, name, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func (p *params) Bool(name string) optional.Value[bool] {
	return param(p, name, strconv.ParseBool)
}

func (p *params) Date(name string) optional.Value[repository.Date] {
	return param(p, name, repository.ParseDate)
}

// page reads size, offset, sort and direction. Missing values fall back to
// defaultSize, zero, defaultSort and ASC.
func (p *params) page(defaultSize int64, defaultSort string) query.PageRequest {
	req := query.PageRequest{
		Size:   p.Int64("size").OrElse(defaultSize),
		Offset: p.Int64("offset").OrElse(0),
		Sort:   p.Str("sort").OrElse(defaultSort),
	}
	if s, ok := p.raw("direction"); ok && p.err == nil {
		dir, err := query.ParseDirection(s)
		if err != nil {
			p.err = err
			return req
		}
		req.Direction = dir
	}
	return req
}

package query

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/registrar/schema"
	"github.com/Konsultn-Engineering/registrar/validation"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

func (d Direction) valid() bool { return d == Asc || d == Desc }

// ParseDirection accepts asc/desc in any case; empty means ASC.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", Invalid("direction", fmt.Errorf("%w: direction %q", ErrInvalidPage, s))
}

// PageRequest selects one sorted page of a listing. Sort is an attribute
// name and must be known to the entity's projection.
type PageRequest struct {
	Size      int64     `json:"size" koanf:"size" validate:"gt=0"`
	Offset    int64     `json:"offset" koanf:"offset" validate:"gte=0"`
	Sort      string    `json:"sort" koanf:"sort" validate:"required"`
	Direction Direction `json:"direction" koanf:"direction" validate:"omitempty,oneof=ASC DESC"`
}

// Validate checks the request against p. maxSize caps Size when positive.
// The sort column is returned so callers never render Sort itself.
func (r PageRequest) Validate(p *schema.Projection, maxSize int64) (string, error) {
	if verrs := validation.Struct(&r); verrs != nil {
		field := ""
		if fields := verrs.Fields(); len(fields) > 0 {
			field = fields[0].Field()
		}
		return "", Invalid(field, fmt.Errorf("%w: %s", ErrInvalidPage, verrs.Error()))
	}
	if maxSize > 0 && r.Size > maxSize {
		return "", Invalid("size", fmt.Errorf("%w: size %d exceeds %d", ErrInvalidPage, r.Size, maxSize))
	}
	field, ok := p.Field(r.Sort)
	if !ok || field.Hidden {
		return "", Invalid("sort", fmt.Errorf("%w: %q on %s", ErrUnknownAttribute, r.Sort, p.Table()))
	}
	return field.Column, nil
}

// OrderDirection returns Direction, defaulting to ASC.
func (r PageRequest) OrderDirection() Direction {
	if r.Direction == "" {
		return Asc
	}
	return r.Direction
}

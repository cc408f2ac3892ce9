package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/registrar/permission"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/repository"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// Listing is the response of a paged search. Capability flags of the
// caller are merged into the envelope and into every row.
type Listing[R any] struct {
	Content     []R   `json:"content"`
	ItemsLength int64 `json:"itemsLength"`
	permission.ListingFlags
}

type teacherRow struct {
	repository.Teacher
	permission.RowFlags
}

type studentRow struct {
	repository.Student
	permission.RowFlags
}

func rows[T, R any](items []T, wrap func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = wrap(item)
	}
	return out
}

// decodePatch reads a JSON body into v. Unknown fields are rejected so a
// misspelled attribute is not silently dropped.
func decodePatch(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return query.Invalid("", errEmptyBody)
		}
		return query.Invalid("", err)
	}
	return nil
}

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/registrar/permission"
)

// GrantsHeader carries the caller's resolved grants as a JSON array of
// {"url","method"} objects, set by the authenticating gateway.
const GrantsHeader = "X-Resource-Grants"

var ErrNoGrants = errors.New("no grants on request")

// HeaderGrants reads grants from GrantsHeader.
type HeaderGrants struct{}

func (HeaderGrants) Grants(r *http.Request) ([]permission.Grant, error) {
	raw := r.Header.Get(GrantsHeader)
	if raw == "" {
		return nil, ErrNoGrants
	}
	var grants []permission.Grant
	if err := json.Unmarshal([]byte(raw), &grants); err != nil {
		return nil, fmt.Errorf("decode %s: %w", GrantsHeader, err)
	}
	return grants, nil
}

// StaticGrants grants the same resources to every caller.
type StaticGrants []permission.Grant

func (g StaticGrants) Grants(*http.Request) ([]permission.Grant, error) {
	return g, nil
}

// Package permission turns the resources granted to the caller into the
// capability flags merged into listing responses.
package permission

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Objects and actions compare exactly. "/user/*" is a literal resource
// name and does not cover "/user/42".
const modelText = `
[request_definition]
r = obj, act

[policy_definition]
p = obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.obj == p.obj && r.act == p.act
`

// Grant is one resource the caller may use, as resolved by the
// authorization server.
type Grant struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// Set answers whether a caller holds a grant.
type Set struct {
	enforcer *casbin.Enforcer
}

// NewSet builds a Set from grants. Grants with an empty URL or method are
// ignored.
func NewSet(grants []Grant) (*Set, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load permission model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	rules := make([][]string, 0, len(grants))
	for _, g := range grants {
		url, method := strings.TrimSpace(g.URL), strings.ToUpper(strings.TrimSpace(g.Method))
		if url == "" || method == "" {
			continue
		}
		rules = append(rules, []string{url, method})
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("add grants: %w", err)
		}
	}
	return &Set{enforcer: e}, nil
}

// Can reports whether the caller may call method on url. A nil Set grants
// nothing.
func (s *Set) Can(url, method string) bool {
	if s == nil {
		return false
	}
	ok, err := s.enforcer.Enforce(url, strings.ToUpper(method))
	return err == nil && ok
}

// RowFlags are merged into every row of a listing.
type RowFlags struct {
	Edit          bool `json:"edit"`
	ResetPassword bool `json:"resetPassword"`
	UserView      bool `json:"userView"`
	UserEdit      bool `json:"userEdit"`
}

// ListingFlags are merged into the listing envelope.
type ListingFlags struct {
	Add    bool `json:"add"`
	Import bool `json:"import"`
}

// Capabilities resolves the flags of a listing served under resource, such
// as "/teacher".
func (s *Set) Capabilities(resource string) (ListingFlags, RowFlags) {
	listing := ListingFlags{
		Add:    s.Can(resource, "POST"),
		Import: s.Can(resource+"/import", "POST"),
	}
	row := RowFlags{
		Edit:          s.Can(resource, "PATCH"),
		ResetPassword: s.Can("/user/password", "PATCH"),
		UserView:      s.Can("/user/*", "GET"),
		UserEdit:      s.Can("/user", "PATCH"),
	}
	return listing, row
}

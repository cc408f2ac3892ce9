// Package handler serves the teacher and student listings and partial
// updates over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/Konsultn-Engineering/registrar/config"
	"github.com/Konsultn-Engineering/registrar/permission"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/repository"
)

const (
	teacherResource  = "/teacher"
	studentResource  = "/student"
	completeResource = "/student/complete"
)

// TeacherService is satisfied by *repository.TeacherRepository.
type TeacherService interface {
	Page(ctx context.Context, f repository.TeacherFilter, page query.PageRequest) (repository.Page[repository.Teacher], error)
	Update(ctx context.Context, patch repository.TeacherPatch) error
}

// StudentService is satisfied by *repository.StudentRepository.
type StudentService interface {
	Page(ctx context.Context, f repository.StudentFilter, page query.PageRequest) (repository.Page[repository.Student], error)
	Update(ctx context.Context, patch repository.StudentPatch) error
	CompleteProfile(ctx context.Context, patch repository.StudentPatch) error
}

// GrantSource resolves the resources the caller of r was granted. Token
// validation happens upstream; an error means the caller is not
// authenticated.
type GrantSource interface {
	Grants(r *http.Request) ([]permission.Grant, error)
}

// HealthFunc reports store health.
type HealthFunc func(ctx context.Context) error

type Handler struct {
	teachers TeacherService
	students StudentService
	grants   GrantSource
	health   HealthFunc
	paging   config.PagingConfig
}

// Option configures a Handler.
type Option func(*Handler)

func WithHealth(fn HealthFunc) Option {
	return func(h *Handler) { h.health = fn }
}

func WithPaging(cfg config.PagingConfig) Option {
	return func(h *Handler) { h.paging = cfg }
}

func New(teachers TeacherService, students StudentService, grants GrantSource, opts ...Option) *Handler {
	h := &Handler{
		teachers: teachers,
		students: students,
		grants:   grants,
		paging:   config.PagingConfig{DefaultSize: 20, MaxSize: 100},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// permissions resolves the caller's grants and checks method on resource.
// It writes the error response itself and returns nil when the request must
// stop.
func (h *Handler) permissions(w http.ResponseWriter, r *http.Request, resource string) *permission.Set {
	grants, err := h.grants.Grants(r)
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, codeUnauthorized, "authentication required", err)
		return nil
	}
	set, err := permission.NewSet(grants)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "internal error", err)
		return nil
	}
	if !set.Can(resource, r.Method) {
		respondError(w, r, http.StatusForbidden, codeForbidden, "access denied", nil)
		return nil
	}
	return set
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, codeUnavailable, "database unavailable", err)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

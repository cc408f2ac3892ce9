package handler

import (
	"net/http"

	"github.com/Konsultn-Engineering/registrar/repository"
)

func teacherFilter(p *params) repository.TeacherFilter {
	return repository.TeacherFilter{
		Name:      p.Str("name"),
		Gender:    p.Str("gender"),
		WorkDate:  p.Date("workDate"),
		Nation:    p.Str("nation"),
		Academic:  p.Int64("academic"),
		Degree:    p.Int64("degree"),
		ProfTitle: p.Int64("profTitle"),
		SchoolID:  p.Int64("schoolId"),
		CollegeID: p.Int64("collegeId"),
		DepID:     p.Int64("depId"),
		IsEnable:  p.Bool("isEnable"),
	}
}

// ListTeachers serves GET /teacher.
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	perms := h.permissions(w, r, teacherResource)
	if perms == nil {
		return
	}

	p := newParams(r.URL.Query())
	filter := teacherFilter(p)
	page := p.page(h.paging.DefaultSize, "sort")
	if p.err != nil {
		respondFailure(w, r, p.err)
		return
	}

	result, err := h.teachers.Page(r.Context(), filter, page)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	listing, row := perms.Capabilities(teacherResource)
	respondJSON(w, http.StatusOK, Listing[teacherRow]{
		Content: rows(result.Content, func(t repository.Teacher) teacherRow {
			return teacherRow{Teacher: t, RowFlags: row}
		}),
		ItemsLength:  result.ItemsLength,
		ListingFlags: listing,
	})
}

// UpdateTeacher serves PATCH /teacher.
func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	if h.permissions(w, r, teacherResource) == nil {
		return
	}

	var patch repository.TeacherPatch
	if err := decodePatch(w, r, &patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	if err := h.teachers.Update(r.Context(), patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/Konsultn-Engineering/registrar/repository"
)

func studentFilter(p *params) repository.StudentFilter {
	return repository.StudentFilter{
		Name:        p.Str("name"),
		No:          p.Str("no"),
		Gender:      p.Str("gender"),
		SchoolID:    p.Int64("schoolId"),
		CollegeID:   p.Int64("collegeId"),
		DepID:       p.Int64("depId"),
		SpecialtyID: p.Int64("specialtyId"),
		ClassesID:   p.Int64("classesId"),
		Academic:    p.Int64("academic"),
		EnterDate:   p.Date("enterDate"),
		IsEnable:    p.Bool("isEnable"),
	}
}

// ListStudents serves GET /student.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	perms := h.permissions(w, r, studentResource)
	if perms == nil {
		return
	}

	p := newParams(r.URL.Query())
	filter := studentFilter(p)
	page := p.page(h.paging.DefaultSize, "sort")
	if p.err != nil {
		respondFailure(w, r, p.err)
		return
	}

	result, err := h.students.Page(r.Context(), filter, page)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	listing, row := perms.Capabilities(studentResource)
	respondJSON(w, http.StatusOK, Listing[studentRow]{
		Content: rows(result.Content, func(s repository.Student) studentRow {
			return studentRow{Student: s, RowFlags: row}
		}),
		ItemsLength:  result.ItemsLength,
		ListingFlags: listing,
	})
}

// UpdateStudent serves PATCH /student.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	if h.permissions(w, r, studentResource) == nil {
		return
	}

	var patch repository.StudentPatch
	if err := decodePatch(w, r, &patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	if err := h.students.Update(r.Context(), patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteStudent serves PATCH /student/complete. The body is a student
// patch that carries every attribute of a full record.
func (h *Handler) CompleteStudent(w http.ResponseWriter, r *http.Request) {
	if h.permissions(w, r, completeResource) == nil {
		return
	}

	var patch repository.StudentPatch
	if err := decodePatch(w, r, &patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	if err := h.students.CompleteProfile(r.Context(), patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

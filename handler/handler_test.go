package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/registrar/config"
	"github.com/Konsultn-Engineering/registrar/optional"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/repository"
)

type fakeTeachers struct {
	filter  repository.TeacherFilter
	page    query.PageRequest
	patch   repository.TeacherPatch
	result  repository.Page[repository.Teacher]
	pageErr error
	updErr  error
}

func (f *fakeTeachers) Page(_ context.Context, filter repository.TeacherFilter, page query.PageRequest) (repository.Page[repository.Teacher], error) {
	f.filter, f.page = filter, page
	return f.result, f.pageErr
}

func (f *fakeTeachers) Update(_ context.Context, patch repository.TeacherPatch) error {
	f.patch = patch
	return f.updErr
}

type fakeStudents struct {
	filter repository.StudentFilter
	page   query.PageRequest
	patch  repository.StudentPatch
	result repository.Page[repository.Student]
	err    error
}

func (f *fakeStudents) Page(_ context.Context, filter repository.StudentFilter, page query.PageRequest) (repository.Page[repository.Student], error) {
	f.filter, f.page = filter, page
	return f.result, f.err
}

func (f *fakeStudents) Update(_ context.Context, patch repository.StudentPatch) error {
	f.patch = patch
	return f.err
}

func (f *fakeStudents) CompleteProfile(_ context.Context, patch repository.StudentPatch) error {
	f.patch = patch
	if err := patch.Complete(); err != nil {
		return err
	}
	return f.err
}

var allGrants = StaticGrants{
	{URL: "/teacher", Method: "GET"},
	{URL: "/teacher", Method: "PATCH"},
	{URL: "/teacher", Method: "POST"},
	{URL: "/student", Method: "GET"},
	{URL: "/student", Method: "PATCH"},
	{URL: "/student/complete", Method: "PATCH"},
	{URL: "/user/*", Method: "GET"},
}

func newTestRouter(t *testing.T, teachers *fakeTeachers, students *fakeStudents, grants GrantSource) http.Handler {
	t.Helper()
	h := New(teachers, students, grants)
	return NewRouter(h, RouterConfig{CORSOrigins: []string{"*"}, RateLimitDisabled: true})
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListTeachers(t *testing.T) {
	teachers := &fakeTeachers{result: repository.Page[repository.Teacher]{
		Content:     []repository.Teacher{{ID: 1, Name: "John", Sort: 2, IsEnable: true}},
		ItemsLength: 11,
	}}
	router := newTestRouter(t, teachers, &fakeStudents{}, allGrants)

	rec := serve(router, http.MethodGet,
		"/teacher?name=John&isEnable=true&workDate=2015-09-01&depId=&size=10&offset=10&sort=name&direction=desc", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	assert.Equal(t, optional.Of("John"), teachers.filter.Name)
	assert.Equal(t, optional.Of(true), teachers.filter.IsEnable)
	assert.Equal(t, optional.Of(repository.NewDate(2015, 9, 1)), teachers.filter.WorkDate)
	assert.True(t, teachers.filter.DepID.IsAbsent())
	assert.True(t, teachers.filter.Gender.IsAbsent())
	assert.Equal(t, query.PageRequest{Size: 10, Offset: 10, Sort: "name", Direction: query.Desc}, teachers.page)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(11), body["itemsLength"])
	assert.Equal(t, true, body["add"])
	assert.Equal(t, false, body["import"])

	content := body["content"].([]any)
	require.Len(t, content, 1)
	row := content[0].(map[string]any)
	assert.Equal(t, "John", row["name"])
	assert.Equal(t, true, row["edit"])
	assert.Equal(t, true, row["userView"])
	assert.Equal(t, false, row["userEdit"])
	assert.Equal(t, false, row["resetPassword"])
	assert.Nil(t, row["gender"])
}

func TestListTeachers_Defaults(t *testing.T) {
	teachers := &fakeTeachers{}
	router := newTestRouter(t, teachers, &fakeStudents{}, allGrants)

	rec := serve(router, http.MethodGet, "/teacher", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, query.PageRequest{Size: 20, Sort: "sort"}, teachers.page)
	assert.JSONEq(t, `{"content":[],"itemsLength":0,"add":true,"import":false}`, rec.Body.String())
}

func TestListTeachers_BadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"integer", "/teacher?depId=abc"},
		{"boolean", "/teacher?isEnable=maybe"},
		{"date", "/teacher?workDate=01/09/2015"},
		{"direction", "/teacher?direction=sideways"},
		{"size", "/teacher?size=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teachers := &fakeTeachers{}
			rec := serve(newTestRouter(t, teachers, &fakeStudents{}, allGrants), http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, codeValidation, decodeError(t, rec).Code)
			assert.Zero(t, teachers.page)
		})
	}
}

func TestListTeachers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", query.Invalid("sort", query.ErrUnknownAttribute), http.StatusBadRequest, codeValidation},
		{"store", errors.New("count teacher: connection refused"), http.StatusInternalServerError, codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teachers := &fakeTeachers{pageErr: tt.err}
			rec := serve(newTestRouter(t, teachers, &fakeStudents{}, allGrants), http.MethodGet, "/teacher", "")
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotContains(t, resp.Message, "connection refused")
		})
	}
}

func TestUpdateTeacher(t *testing.T) {
	teachers := &fakeTeachers{}
	router := newTestRouter(t, teachers, &fakeStudents{}, allGrants)

	rec := serve(router, http.MethodPatch, "/teacher", `{"id":5,"remark":"x","depId":null}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	assert.Equal(t, optional.Of[int64](5), teachers.patch.ID)
	assert.Equal(t, optional.Of("x"), teachers.patch.Remark)
	assert.True(t, teachers.patch.DepID.IsNull())
	assert.True(t, teachers.patch.Name.IsAbsent())
}

func TestUpdateTeacher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		updErr error
		status int
		code   string
	}{
		{"malformed body", `{"id":`, nil, http.StatusBadRequest, codeValidation},
		{"empty body", ``, nil, http.StatusBadRequest, codeValidation},
		{"unknown field", `{"id":5,"salary":1}`, nil, http.StatusBadRequest, codeValidation},
		{"no fields", `{"id":5}`, query.Invalid("", query.ErrNoFields), http.StatusBadRequest, codeValidation},
		{"not found", `{"id":5,"name":"n"}`, repository.ErrNotFound, http.StatusNotFound, codeNotFound},
		{"store failure", `{"id":5,"name":"n"}`, errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teachers := &fakeTeachers{updErr: tt.updErr}
			rec := serve(newTestRouter(t, teachers, &fakeStudents{}, allGrants), http.MethodPatch, "/teacher", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestPermissions(t *testing.T) {
	t.Run("missing grants header", func(t *testing.T) {
		rec := serve(newTestRouter(t, &fakeTeachers{}, &fakeStudents{}, HeaderGrants{}), http.MethodGet, "/teacher", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, codeUnauthorized, decodeError(t, rec).Code)
	})

	t.Run("header grants", func(t *testing.T) {
		router := newTestRouter(t, &fakeTeachers{}, &fakeStudents{}, HeaderGrants{})
		req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
		req.Header.Set(GrantsHeader, `[{"url":"/teacher","method":"get"},{"url":"/teacher/import","method":"POST"}]`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"content":[],"itemsLength":0,"add":false,"import":true}`, rec.Body.String())
	})

	t.Run("method not granted", func(t *testing.T) {
		teachers := &fakeTeachers{}
		grants := StaticGrants{{URL: "/teacher", Method: "GET"}}
		rec := serve(newTestRouter(t, teachers, &fakeStudents{}, grants), http.MethodPatch, "/teacher", `{"id":1,"name":"n"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.True(t, teachers.patch.ID.IsAbsent())
	})
}

func TestListStudents(t *testing.T) {
	students := &fakeStudents{result: repository.Page[repository.Student]{
		Content:     []repository.Student{{ID: 19, Name: "19", No: "2019001"}},
		ItemsLength: 1,
	}}
	router := newTestRouter(t, &fakeTeachers{}, students, allGrants)

	rec := serve(router, http.MethodGet, "/student?no=2019&classesId=3&sort=no", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, optional.Of("2019"), students.filter.No)
	assert.Equal(t, optional.Of[int64](3), students.filter.ClassesID)
	assert.Equal(t, "no", students.page.Sort)

	var body struct {
		Content []struct {
			No   string `json:"no"`
			Edit bool   `json:"edit"`
		} `json:"content"`
		ItemsLength int64 `json:"itemsLength"`
		Add         bool  `json:"add"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Content, 1)
	assert.Equal(t, "2019001", body.Content[0].No)
	assert.True(t, body.Content[0].Edit)
	assert.False(t, body.Add)
}

func TestUpdateStudent(t *testing.T) {
	students := &fakeStudents{}
	router := newTestRouter(t, &fakeTeachers{}, students, allGrants)

	rec := serve(router, http.MethodPatch, "/student", `{"id":19,"enterDate":"2019-09-01","birthday":null}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, optional.Of(repository.NewDate(2019, 9, 1)), students.patch.EnterDate)
	assert.True(t, students.patch.Birthday.IsNull())
}

const completeStudentBody = `{
	"id": 10, "name": "testSTUDENT", "gender": "男", "no": "201401011234",
	"idNumber": "522520199708810014", "enterDate": "2011-12-11", "birthday": "2011-12-11",
	"academic": 54, "schoolId": 1, "collegeId": 2, "depId": 19, "specialtyId": 20,
	"classesId": 22, "sort": 25, "remark": "remark"
}`

func TestCompleteStudent(t *testing.T) {
	students := &fakeStudents{}
	router := newTestRouter(t, &fakeTeachers{}, students, allGrants)

	rec := serve(router, http.MethodPatch, "/student/complete", completeStudentBody)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, optional.Of[int64](10), students.patch.ID)
	assert.Equal(t, optional.Of(repository.NewDate(2011, 12, 11)), students.patch.Birthday)
	assert.Equal(t, optional.Of[int64](22), students.patch.ClassesID)
}

func TestCompleteStudent_Errors(t *testing.T) {
	t.Run("missing attribute", func(t *testing.T) {
		router := newTestRouter(t, &fakeTeachers{}, &fakeStudents{}, allGrants)

		rec := serve(router, http.MethodPatch, "/student/complete", `{"id":10,"name":"n"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, codeValidation, body.Code)
		assert.Equal(t, "no: attribute is required", body.Message)
	})

	t.Run("student grant is not enough", func(t *testing.T) {
		grants := StaticGrants{{URL: "/student", Method: "PATCH"}}
		router := newTestRouter(t, &fakeTeachers{}, &fakeStudents{}, grants)

		rec := serve(router, http.MethodPatch, "/student/complete", completeStudentBody)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	h := New(&fakeTeachers{}, &fakeStudents{}, allGrants, WithHealth(func(context.Context) error {
		return errors.New("ping failed")
	}))
	router := NewRouter(h, RouterConfig{RateLimitDisabled: true})

	rec := serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(NewRouter(New(&fakeTeachers{}, &fakeStudents{}, allGrants), RouterConfig{RateLimitDisabled: true}),
		http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, &fakeTeachers{}, &fakeStudents{}, allGrants)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	a := serve(router, http.MethodGet, "/healthz", "").Header().Get(RequestIDHeader)
	b := serve(router, http.MethodGet, "/healthz", "").Header().Get(RequestIDHeader)
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestRouterConfigFrom(t *testing.T) {
	cfg := RouterConfigFrom(config.SecurityConfig{CORSOrigins: []string{"https://a.example"}})
	assert.True(t, cfg.RateLimitDisabled)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSOrigins)

	cfg = RouterConfigFrom(config.SecurityConfig{RateLimitReqs: 10, RateLimitWindow: time.Minute})
	assert.False(t, cfg.RateLimitDisabled)
	assert.Equal(t, 10, cfg.RateLimitRequests)
}

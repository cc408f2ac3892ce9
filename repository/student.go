package repository

import (
	"context"
	"slices"

	"github.com/Konsultn-Engineering/registrar/database"
	"github.com/Konsultn-Engineering/registrar/optional"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/schema"
)

type Student struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	No          string  `json:"no"`
	Gender      *string `json:"gender"`
	EnterDate   *Date   `json:"enterDate"`
	Birthday    *Date   `json:"birthday"`
	IDNumber    *string `json:"idNumber"`
	Academic    *int64  `json:"academic"`
	SchoolID    *int64  `json:"schoolId"`
	CollegeID   *int64  `json:"collegeId"`
	DepID       *int64  `json:"depId"`
	SpecialtyID *int64  `json:"specialtyId"`
	ClassesID   *int64  `json:"classesId"`
	Sort        int64   `json:"sort"`
	Remark      *string `json:"remark"`
	IsEnable    bool    `json:"isEnable"`
}

// StudentProjection lists the student columns in Student.columns order.
var StudentProjection = schema.MustEntityProjection("Student", []schema.FieldSpec{
	schema.Attr("id"),
	schema.Attr("name", schema.Updatable),
	schema.Attr("no", schema.Updatable),
	schema.Attr("gender", schema.Updatable, schema.Nullable),
	schema.Attr("enterDate", schema.Updatable, schema.Nullable),
	schema.Attr("birthday", schema.Updatable, schema.Nullable),
	schema.Attr("idNumber", schema.Updatable, schema.Nullable),
	schema.Attr("academic", schema.Updatable, schema.Nullable),
	schema.Attr("schoolId", schema.Updatable, schema.Nullable),
	schema.Attr("collegeId", schema.Updatable, schema.Nullable),
	schema.Attr("depId", schema.Updatable, schema.Nullable),
	schema.Attr("specialtyId", schema.Updatable, schema.Nullable),
	schema.Attr("classesId", schema.Updatable, schema.Nullable),
	schema.Attr("sort", schema.Updatable),
	schema.Attr("remark", schema.Updatable, schema.Nullable),
	schema.Attr("isEnable", schema.Updatable),
	schema.Attr("userId", schema.Hidden),
	schema.Attr("createUser", schema.Hidden),
	schema.Attr("createTime", schema.Hidden),
	schema.Attr("modifyUser", schema.Hidden),
	schema.Attr("modifyTime", schema.Hidden),
})

func init() {
	schema.Register[Student](StudentProjection)
}

func (s *Student) columns() []any {
	return []any{
		&s.ID, &s.Name, &s.No, &s.Gender, &s.EnterDate, &s.Birthday,
		&s.IDNumber, &s.Academic, &s.SchoolID, &s.CollegeID, &s.DepID,
		&s.SpecialtyID, &s.ClassesID, &s.Sort, &s.Remark, &s.IsEnable,
	}
}

// StudentFilter holds the optional search criteria of a student listing.
// Name and No match anywhere in the column.
type StudentFilter struct {
	Name        optional.Value[string] `json:"name"`
	No          optional.Value[string] `json:"no"`
	Gender      optional.Value[string] `json:"gender"`
	SchoolID    optional.Value[int64]  `json:"schoolId"`
	CollegeID   optional.Value[int64]  `json:"collegeId"`
	DepID       optional.Value[int64]  `json:"depId"`
	SpecialtyID optional.Value[int64]  `json:"specialtyId"`
	ClassesID   optional.Value[int64]  `json:"classesId"`
	Academic    optional.Value[int64]  `json:"academic"`
	EnterDate   optional.Value[Date]   `json:"enterDate"`
	IsEnable    optional.Value[bool]   `json:"isEnable"`
}

func (f StudentFilter) Criteria() query.Criteria {
	return query.Criteria{
		query.Contains("name", f.Name),
		query.Contains("no", f.No),
		query.When("gender", f.Gender),
		query.When("schoolId", f.SchoolID),
		query.When("collegeId", f.CollegeID),
		query.When("depId", f.DepID),
		query.When("specialtyId", f.SpecialtyID),
		query.When("classesId", f.ClassesID),
		query.When("academic", f.Academic),
		query.When("enterDate", f.EnterDate),
		query.When("isEnable", f.IsEnable),
	}
}

type StudentPatch struct {
	ID          optional.Value[int64]  `json:"id"`
	Name        optional.Value[string] `json:"name"`
	No          optional.Value[string] `json:"no"`
	Gender      optional.Value[string] `json:"gender"`
	EnterDate   optional.Value[Date]   `json:"enterDate"`
	Birthday    optional.Value[Date]   `json:"birthday"`
	IDNumber    optional.Value[string] `json:"idNumber"`
	Academic    optional.Value[int64]  `json:"academic"`
	SchoolID    optional.Value[int64]  `json:"schoolId"`
	CollegeID   optional.Value[int64]  `json:"collegeId"`
	DepID       optional.Value[int64]  `json:"depId"`
	SpecialtyID optional.Value[int64]  `json:"specialtyId"`
	ClassesID   optional.Value[int64]  `json:"classesId"`
	Sort        optional.Value[int64]  `json:"sort"`
	Remark      optional.Value[string] `json:"remark"`
	IsEnable    optional.Value[bool]   `json:"isEnable"`
}

func (p StudentPatch) Key() query.Criterion {
	return query.Assign("id", p.ID)
}

func (p StudentPatch) Fields() query.Criteria {
	return query.Criteria{
		query.Assign("name", p.Name),
		query.Assign("no", p.No),
		query.Assign("gender", p.Gender),
		query.Assign("enterDate", p.EnterDate),
		query.Assign("birthday", p.Birthday),
		query.Assign("idNumber", p.IDNumber),
		query.Assign("academic", p.Academic),
		query.Assign("schoolId", p.SchoolID),
		query.Assign("collegeId", p.CollegeID),
		query.Assign("depId", p.DepID),
		query.Assign("specialtyId", p.SpecialtyID),
		query.Assign("classesId", p.ClassesID),
		query.Assign("sort", p.Sort),
		query.Assign("remark", p.Remark),
		query.Assign("isEnable", p.IsEnable),
	}
}

// completeAttributes must all carry a value when a student completes their
// own record.
var completeAttributes = []string{
	"name", "no", "gender", "idNumber", "enterDate", "birthday", "academic",
	"schoolId", "collegeId", "depId", "specialtyId", "classesId",
}

// Complete reports the first attribute of a full student record that p
// leaves absent or null.
func (p StudentPatch) Complete() error {
	fields := p.Fields()
	for _, attr := range completeAttributes {
		i := slices.IndexFunc(fields, func(c query.Criterion) bool { return c.Attribute == attr })
		if i < 0 || !fields[i].IsPresent() || fields[i].IsNull() {
			return query.Invalid(attr, query.ErrRequired)
		}
	}
	return nil
}

type StudentRepository struct {
	store store[Student]
}

func NewStudentRepository(pool database.Pool, opts ...Option) *StudentRepository {
	return &StudentRepository{
		store: newStore("student", pool, func() (*Student, []any) {
			s := new(Student)
			return s, s.columns()
		}, opts),
	}
}

func (r *StudentRepository) Page(ctx context.Context, f StudentFilter, page query.PageRequest) (Page[Student], error) {
	return r.store.page(ctx, f.Criteria(), page)
}

func (r *StudentRepository) Update(ctx context.Context, patch StudentPatch) error {
	return r.store.update(ctx, patch.Key(), patch.Fields())
}

// CompleteProfile is Update for a patch that must carry a full record.
func (r *StudentRepository) CompleteProfile(ctx context.Context, patch StudentPatch) error {
	if err := patch.Complete(); err != nil {
		return err
	}
	return r.Update(ctx, patch)
}

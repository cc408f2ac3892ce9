package repository

import (
	"context"

	"github.com/Konsultn-Engineering/registrar/database"
	"github.com/Konsultn-Engineering/registrar/optional"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/schema"
)

// Teacher is the listing projection of the teacher table.
type Teacher struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	SchoolID            *int64  `json:"schoolId"`
	CollegeID           *int64  `json:"collegeId"`
	DepID               *int64  `json:"depId"`
	Gender              *string `json:"gender"`
	Birthday            *Date   `json:"birthday"`
	GraduationDate      *Date   `json:"graduationDate"`
	WorkDate            *Date   `json:"workDate"`
	Nation              *string `json:"nation"`
	Degree              *int64  `json:"degree"`
	Academic            *int64  `json:"academic"`
	Major               *string `json:"major"`
	ProfTitle           *int64  `json:"profTitle"`
	ProfTitleAssDate    *Date   `json:"profTitleAssDate"`
	GraduateInstitution *string `json:"graduateInstitution"`
	MajorResearch       *string `json:"majorResearch"`
	SubjectCategory     *string `json:"subjectCategory"`
	IDNumber            *string `json:"idNumber"`
	IsAcademicLeader    bool    `json:"isAcademicLeader"`
	Sort                int64   `json:"sort"`
	Remark              *string `json:"remark"`
	IsEnable            bool    `json:"isEnable"`
}

// TeacherProjection lists the teacher columns. The order matches
// Teacher.columns.
var TeacherProjection = schema.MustEntityProjection("Teacher", []schema.FieldSpec{
	schema.Attr("id"),
	schema.Attr("name", schema.Updatable),
	schema.Attr("schoolId", schema.Updatable, schema.Nullable),
	schema.Attr("collegeId", schema.Updatable, schema.Nullable),
	schema.Attr("depId", schema.Updatable, schema.Nullable),
	schema.Attr("gender", schema.Updatable, schema.Nullable),
	schema.Attr("birthday", schema.Updatable, schema.Nullable),
	schema.Attr("graduationDate", schema.Updatable, schema.Nullable),
	schema.Attr("workDate", schema.Updatable, schema.Nullable),
	schema.Attr("nation", schema.Updatable, schema.Nullable),
	schema.Attr("degree", schema.Updatable, schema.Nullable),
	schema.Attr("academic", schema.Updatable, schema.Nullable),
	schema.Attr("major", schema.Updatable, schema.Nullable),
	schema.Attr("profTitle", schema.Updatable, schema.Nullable),
	schema.Attr("profTitleAssDate", schema.Updatable, schema.Nullable),
	schema.Attr("graduateInstitution", schema.Updatable, schema.Nullable),
	schema.Attr("majorResearch", schema.Updatable, schema.Nullable),
	schema.Attr("subjectCategory", schema.Updatable, schema.Nullable),
	schema.Attr("idNumber", schema.Updatable, schema.Nullable),
	schema.Attr("isAcademicLeader", schema.Updatable),
	schema.Attr("sort", schema.Updatable),
	schema.Attr("remark", schema.Updatable, schema.Nullable),
	schema.Attr("isEnable", schema.Updatable),
	schema.Attr("createUser", schema.Hidden),
	schema.Attr("createTime", schema.Hidden),
	schema.Attr("modifyUser", schema.Hidden),
	schema.Attr("modifyTime", schema.Hidden),
})

func init() {
	schema.Register[Teacher](TeacherProjection)
}

func (t *Teacher) columns() []any {
	return []any{
		&t.ID, &t.Name, &t.SchoolID, &t.CollegeID, &t.DepID, &t.Gender,
		&t.Birthday, &t.GraduationDate, &t.WorkDate, &t.Nation, &t.Degree,
		&t.Academic, &t.Major, &t.ProfTitle, &t.ProfTitleAssDate,
		&t.GraduateInstitution, &t.MajorResearch, &t.SubjectCategory,
		&t.IDNumber, &t.IsAcademicLeader, &t.Sort, &t.Remark, &t.IsEnable,
	}
}

// TeacherFilter holds the optional search criteria of a teacher listing.
// Name matches anywhere in the teacher's name.
type TeacherFilter struct {
	Name      optional.Value[string] `json:"name"`
	Gender    optional.Value[string] `json:"gender"`
	WorkDate  optional.Value[Date]   `json:"workDate"`
	Nation    optional.Value[string] `json:"nation"`
	Academic  optional.Value[int64]  `json:"academic"`
	Degree    optional.Value[int64]  `json:"degree"`
	ProfTitle optional.Value[int64]  `json:"profTitle"`
	SchoolID  optional.Value[int64]  `json:"schoolId"`
	CollegeID optional.Value[int64]  `json:"collegeId"`
	DepID     optional.Value[int64]  `json:"depId"`
	IsEnable  optional.Value[bool]   `json:"isEnable"`
}

// Criteria returns the filter in emission order.
func (f TeacherFilter) Criteria() query.Criteria {
	return query.Criteria{
		query.Contains("name", f.Name),
		query.When("gender", f.Gender),
		query.When("workDate", f.WorkDate),
		query.When("nation", f.Nation),
		query.When("academic", f.Academic),
		query.When("degree", f.Degree),
		query.When("profTitle", f.ProfTitle),
		query.When("schoolId", f.SchoolID),
		query.When("collegeId", f.CollegeID),
		query.When("depId", f.DepID),
		query.When("isEnable", f.IsEnable),
	}
}

// TeacherPatch is a partial update of one teacher. Absent fields keep their
// stored value; null clears a nullable column.
type TeacherPatch struct {
	ID                  optional.Value[int64]  `json:"id"`
	Name                optional.Value[string] `json:"name"`
	SchoolID            optional.Value[int64]  `json:"schoolId"`
	CollegeID           optional.Value[int64]  `json:"collegeId"`
	DepID               optional.Value[int64]  `json:"depId"`
	Gender              optional.Value[string] `json:"gender"`
	Birthday            optional.Value[Date]   `json:"birthday"`
	GraduationDate      optional.Value[Date]   `json:"graduationDate"`
	WorkDate            optional.Value[Date]   `json:"workDate"`
	Nation              optional.Value[string] `json:"nation"`
	Degree              optional.Value[int64]  `json:"degree"`
	Academic            optional.Value[int64]  `json:"academic"`
	Major               optional.Value[string] `json:"major"`
	ProfTitle           optional.Value[int64]  `json:"profTitle"`
	ProfTitleAssDate    optional.Value[Date]   `json:"profTitleAssDate"`
	GraduateInstitution optional.Value[string] `json:"graduateInstitution"`
	MajorResearch       optional.Value[string] `json:"majorResearch"`
	SubjectCategory     optional.Value[string] `json:"subjectCategory"`
	IDNumber            optional.Value[string] `json:"idNumber"`
	IsAcademicLeader    optional.Value[bool]   `json:"isAcademicLeader"`
	Sort                optional.Value[int64]  `json:"sort"`
	Remark              optional.Value[string] `json:"remark"`
	IsEnable            optional.Value[bool]   `json:"isEnable"`
}

// Key is the identity criterion; an absent or null id is rejected.
func (p TeacherPatch) Key() query.Criterion {
	return query.Assign("id", p.ID)
}

// Fields returns the SET candidates in column order.
func (p TeacherPatch) Fields() query.Criteria {
	return query.Criteria{
		query.Assign("name", p.Name),
		query.Assign("schoolId", p.SchoolID),
		query.Assign("collegeId", p.CollegeID),
		query.Assign("depId", p.DepID),
		query.Assign("gender", p.Gender),
		query.Assign("birthday", p.Birthday),
		query.Assign("graduationDate", p.GraduationDate),
		query.Assign("workDate", p.WorkDate),
		query.Assign("nation", p.Nation),
		query.Assign("degree", p.Degree),
		query.Assign("academic", p.Academic),
		query.Assign("major", p.Major),
		query.Assign("profTitle", p.ProfTitle),
		query.Assign("profTitleAssDate", p.ProfTitleAssDate),
		query.Assign("graduateInstitution", p.GraduateInstitution),
		query.Assign("majorResearch", p.MajorResearch),
		query.Assign("subjectCategory", p.SubjectCategory),
		query.Assign("idNumber", p.IDNumber),
		query.Assign("isAcademicLeader", p.IsAcademicLeader),
		query.Assign("sort", p.Sort),
		query.Assign("remark", p.Remark),
		query.Assign("isEnable", p.IsEnable),
	}
}

// TeacherRepository lists and updates teachers.
type TeacherRepository struct {
	store store[Teacher]
}

func NewTeacherRepository(pool database.Pool, opts ...Option) *TeacherRepository {
	return &TeacherRepository{
		store: newStore("teacher", pool, func() (*Teacher, []any) {
			t := new(Teacher)
			return t, t.columns()
		}, opts),
	}
}

// Page returns the teachers matching f, counted and paged on one connection.
func (r *TeacherRepository) Page(ctx context.Context, f TeacherFilter, page query.PageRequest) (Page[Teacher], error) {
	return r.store.page(ctx, f.Criteria(), page)
}

// Update applies patch to the teacher it identifies.
func (r *TeacherRepository) Update(ctx context.Context, patch TeacherPatch) error {
	return r.store.update(ctx, patch.Key(), patch.Fields())
}

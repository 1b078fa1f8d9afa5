package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core/course"
)

const (
	courseColumns    = `c.id, c.name, c.department, c.number, COALESCE(c.llm_model_id, '') AS llm_model_id`
	uniqueViolation  = "23505"
	foreignViolation = "23503"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func pqErrorCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `INSERT INTO course (id, name, department, number, llm_model_id)
		VALUES (:id, :name, :department, :number, NULLIF(:llm_model_id, ''))`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		if pqErrorCode(err) == uniqueViolation {
			return course.Course{}, course.ErrCourseExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	if err := repo.db.GetContext(ctx, &c, `SELECT `+courseColumns+` FROM course c WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

func (repo *courseRepository) ListInstructorCourses(ctx context.Context, email string) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	q := `SELECT ` + courseColumns + ` FROM course c
		JOIN course_instructor ci ON ci.course_id = c.id
		WHERE ci.instructor_email = $1
		ORDER BY c.name, c.id`
	if err := repo.db.SelectContext(ctx, &courses, q, email); err != nil {
		return nil, errors.Wrap(err, "selecting instructor courses")
	}
	return courses, nil
}

func (repo *courseRepository) AssignInstructor(ctx context.Context, courseID, email string) error {
	q := `INSERT INTO course_instructor (course_id, instructor_email) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, courseID, email); err != nil {
		if pqErrorCode(err) == foreignViolation {
			return course.ErrNotFound
		}
		return errors.Wrap(err, "assigning instructor")
	}
	return nil
}

func (repo *courseRepository) IsInstructor(ctx context.Context, courseID, email string) (bool, error) {
	var ok bool
	q := `SELECT EXISTS (SELECT 1 FROM course_instructor WHERE course_id = $1 AND instructor_email = $2)`
	if err := repo.db.GetContext(ctx, &ok, q, courseID, email); err != nil {
		return false, errors.Wrap(err, "checking course instructor")
	}
	return ok, nil
}

func (repo *courseRepository) UpdateCourseModel(ctx context.Context, courseID, modelID string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE course SET llm_model_id = $2 WHERE id = $1`, courseID, modelID)
	if err != nil {
		return errors.Wrap(err, "updating course model")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating course model")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}

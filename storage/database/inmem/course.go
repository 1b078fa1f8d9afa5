package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/coursepanel/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[c.ID]; ok {
		return course.Course{}, course.ErrCourseExists
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

// ListInstructorCourses orders courses by name.
func (repo *courseRepository) ListInstructorCourses(_ context.Context, email string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for id, emails := range repo.db.instructors {
		if c, ok := repo.db.table[id]; ok && emails[email] {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Name == courses[j].Name {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].Name < courses[j].Name
	})
	return courses, nil
}

func (repo *courseRepository) AssignInstructor(_ context.Context, courseID, email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[courseID]; !ok {
		return course.ErrNotFound
	}
	emails, ok := repo.db.instructors[courseID]
	if !ok {
		emails = make(map[string]bool)
		repo.db.instructors[courseID] = emails
	}
	emails[email] = true
	return nil
}

func (repo *courseRepository) IsInstructor(_ context.Context, courseID, email string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.instructors[courseID][email], nil
}

func (repo *courseRepository) UpdateCourseModel(_ context.Context, courseID, modelID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	c.LLMModelID = modelID
	return nil
}

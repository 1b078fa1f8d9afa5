package inmemdb

import (
	"sync"

	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table       map[string]*course.Course
		instructors map[string]map[string]bool // {course_id: {email: true}}
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			table:       make(map[string]*course.Course),
			instructors: make(map[string]map[string]bool),
		},
	}
}

// Reset drops all rows; for tests.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.pkCount = 0
	db.user.Unlock()

	db.course.Lock()
	db.course.table = make(map[string]*course.Course)
	db.course.instructors = make(map[string]map[string]bool)
	db.course.Unlock()
}

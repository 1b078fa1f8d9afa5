package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateCourse creates a course and assigns it the given instructors.
func CreateCourse(t *testing.T, repo course.Repository, id, name string, instructors ...string) course.Course {
	t.Helper()
	ctx := context.Background()

	c, err := repo.CreateCourse(ctx, course.Course{ID: id, Name: name})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	for _, email := range instructors {
		if err = repo.AssignInstructor(ctx, c.ID, email); err != nil {
			t.Fatalf("createCourse() failed to assign %s: %v", email, err)
		}
	}
	return c
}

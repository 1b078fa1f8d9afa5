package course

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/session"
)

type (
	// Directory lists the courses an instructor may administer.
	Directory interface {
		ListCourses(ctx context.Context, token, email string) ([]Course, error)
	}

	// Identity binds a course id to its display metadata.
	// CourseName stays empty until the directory confirms the course.
	Identity struct {
		CourseID   string
		CourseName string
		Confirmed  bool
	}

	// Resolver resolves course ids against the Directory using fresh session credentials.
	Resolver struct {
		dir    Directory
		creds  session.Provider
		logger core.Logger
	}
)

// DisplayName is the title-cased course name, or the course id for unconfirmed courses.
func (id Identity) DisplayName() string {
	if id.Confirmed && id.CourseName != "" {
		return TitleCase(id.CourseName)
	}
	return id.CourseID
}

func NewResolver(dir Directory, creds session.Provider, logger core.Logger) *Resolver {
	vala.BeginValidation().Validate(
		core.NotNil(dir, "dir"),
		core.NotNil(creds, "creds"),
		core.NotNil(logger, "logger"),
	).CheckAndPanic()

	return &Resolver{dir: dir, creds: creds, logger: logger}
}

// Resolve looks courseID up in the instructor's course list.
// Failing lookups are logged and yield an unconfirmed Identity; only an empty courseID is an error.
func (r *Resolver) Resolve(ctx context.Context, courseID string) (Identity, error) {
	courseID = core.CleanString(courseID)
	if courseID == "" {
		return Identity{}, core.NewInvalidArgumentError("course_id", courseID, "course id is required")
	}
	ident := Identity{CourseID: courseID}

	cred, err := session.Acquire(ctx, r.creds)
	if err != nil {
		r.logger.Error("resolving course: acquiring credentials", err, map[string]interface{}{"course_id": courseID})
		return ident, nil
	}

	courses, err := r.dir.ListCourses(ctx, cred.Token, cred.Email)
	if err != nil {
		r.logger.Error(
			"resolving course: fetching courses",
			errors.Wrap(err, "listing instructor courses"),
			map[string]interface{}{"course_id": courseID, "email": cred.Email},
		)
		return ident, nil
	}

	for _, c := range courses {
		if c.ID == courseID {
			ident.CourseName = c.Name
			ident.Confirmed = true
			return ident, nil
		}
	}
	r.logger.Debug("resolving course: not in instructor's courses", map[string]interface{}{"course_id": courseID})
	return ident, nil
}

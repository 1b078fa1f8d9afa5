package course_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/session"
)

type directoryStub struct {
	courses []course.Course
	err     error

	token, email string
}

func (d *directoryStub) ListCourses(_ context.Context, token, email string) ([]course.Course, error) {
	d.token, d.email = token, email
	return d.courses, d.err
}

type credsStub struct {
	email, token string
	err          error
}

func (c credsStub) Identity(context.Context) (session.Identity, error) {
	return session.Identity{Email: c.email}, c.err
}

func (c credsStub) Token(context.Context) (string, error) { return c.token, c.err }

type loggerStub struct {
	mu     sync.Mutex
	errors []string
}

func (l *loggerStub) Debug(string, ...interface{}) {}
func (l *loggerStub) Info(string, ...interface{})  {}
func (l *loggerStub) Warn(string, ...interface{})  {}
func (l *loggerStub) Fatal(string, ...interface{}) {}

func (l *loggerStub) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func TestNewResolver(t *testing.T) {
	assert.NotPanics(t, func() {
		course.NewResolver(new(directoryStub), credsStub{email: "prof@test.cd", token: "tkn"}, new(loggerStub))
	})

	var nilDir *directoryStub
	assert.Panics(t, func() { course.NewResolver(nilDir, credsStub{}, new(loggerStub)) })
	assert.Panics(t, func() { course.NewResolver(new(directoryStub), nil, new(loggerStub)) })
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	courses := []course.Course{
		{ID: "c1", Name: "cosc 499 capstone project"},
		{ID: "c2", Name: "math 100 calculus"},
	}
	okCreds := credsStub{email: "prof@test.cd", token: "tkn"}

	tests := []struct {
		name       string
		courseID   string
		dir        *directoryStub
		creds      credsStub
		want       course.Identity
		wantErrLog bool
	}{
		{
			name:     "found",
			courseID: "c2",
			dir:      &directoryStub{courses: courses},
			creds:    okCreds,
			want:     course.Identity{CourseID: "c2", CourseName: "math 100 calculus", Confirmed: true},
		},
		{
			name:     "not in directory",
			courseID: "c9",
			dir:      &directoryStub{courses: courses},
			creds:    okCreds,
			want:     course.Identity{CourseID: "c9"},
		},
		{
			name:       "directory failure",
			courseID:   "c1",
			dir:        &directoryStub{err: core.NewRemoteError(500, "")},
			creds:      okCreds,
			want:       course.Identity{CourseID: "c1"},
			wantErrLog: true,
		},
		{
			name:       "no credentials",
			courseID:   "c1",
			dir:        &directoryStub{courses: courses},
			creds:      credsStub{err: core.ErrNotAuthenticated},
			want:       course.Identity{CourseID: "c1"},
			wantErrLog: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(loggerStub)
			r := course.NewResolver(tt.dir, tt.creds, logger)

			got, err := r.Resolve(ctx, tt.courseID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErrLog, len(logger.errors) > 0)
		})
	}

	t.Run("uses fresh credentials", func(t *testing.T) {
		dir := &directoryStub{courses: courses}
		r := course.NewResolver(dir, okCreds, new(loggerStub))
		_, err := r.Resolve(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "tkn", dir.token)
		assert.Equal(t, "prof@test.cd", dir.email)
	})

	t.Run("empty course id", func(t *testing.T) {
		r := course.NewResolver(&directoryStub{}, okCreds, new(loggerStub))
		_, err := r.Resolve(ctx, "  ")
		assert.True(t, core.IsInvalidArgument(err))
	})
}

func TestIdentity_DisplayName(t *testing.T) {
	assert.Equal(t, "COSC 499 Capstone", course.Identity{CourseID: "c1", CourseName: "cosc 499 capstone", Confirmed: true}.DisplayName())
	assert.Equal(t, "c1", course.Identity{CourseID: "c1"}.DisplayName())
}

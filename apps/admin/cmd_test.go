package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/user"
	emailsvc "github.com/trezcool/coursepanel/services/email"
	inmemdb "github.com/trezcool/coursepanel/storage/database/inmem"
	"github.com/trezcool/coursepanel/tests"
)

type cliEnv struct {
	cli        *commandLine
	usrRepo    user.Repository
	courseRepo course.Repository
}

func setup(t *testing.T) cliEnv {
	t.Helper()

	conf := core.NewTestConfig()
	db := inmemdb.Open()
	env := cliEnv{
		usrRepo:    inmemdb.NewUserRepository(db),
		courseRepo: inmemdb.NewCourseRepository(db),
	}
	env.cli = &commandLine{
		usrRepo:   env.usrRepo,
		validate:  core.NewValidator(core.NewTranslator()),
		courseSvc: course.NewService(env.courseRepo, llm.Default, emailsvc.NewConsoleServiceMock(conf), conf),
	}
	return env
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := tt.pwd
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	var gotCommand string
	runMigrationsFunc = func(command string, db *sql.DB, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	runCLITests(t, env.cli, tests, func(t *testing.T, tt cliTest) {
		assert.Equal(t, tt.args[1], gotCommand)
	})
}

func Test_commandLine_addUser(t *testing.T) {
	env := setup(t)

	existing := testutil.CreateUser(t, env.usrRepo, "Prof", "prof", "prof@test.cd", "old-pwd", nil, false)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "new", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "create teacher", args: []string{"adduser", "-username", "New", "-email", "New@test.cd", "-teacher"}, pwd: "pwd"},
		{name: "update existing", args: []string{"adduser", "-username", "prof", "-email", "prof@test.cd", "-admin"}, pwd: "new-pwd"},
	}
	runCLITests(t, env.cli, tests, nil)

	ctx := context.Background()
	created, err := env.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{"new", "new@test.cd"}})
	require.NoError(t, err)
	assert.True(t, created.IsTeacher())
	assert.False(t, created.IsAdmin())
	assert.NoError(t, created.CheckPassword("pwd"))

	updated, err := env.usrRepo.GetUser(ctx, user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.True(t, *updated.IsActive)
	assert.NoError(t, updated.CheckPassword("new-pwd"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	env := setup(t)

	usr := testutil.CreateUser(t, env.usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, pwd: "lmao"},
	}
	runCLITests(t, env.cli, tests, func(t *testing.T, tt cliTest) {
		refreshedUsr, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.False(t, bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash), "failed to update new password")
		assert.NoError(t, refreshedUsr.CheckPassword(tt.pwd))
	})
}

func Test_commandLine_courses(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "addcourse: no name", args: []string{"addcourse", "-department", "cosc"}, wantErr: errHelp},
		{name: "addcourse", args: []string{"addcourse", "-id", "c1", "-name", "cosc 499 capstone", "-department", "cosc", "-number", "499"}},
		{name: "addcourse: duplicate", args: []string{"addcourse", "-id", "c1", "-name", "dup"}, wantErr: course.ErrCourseExists},
		{name: "assign: no email", args: []string{"assign", "-course", "c1"}, wantErr: errHelp},
		{name: "assign: unknown course", args: []string{"assign", "-course", "nope", "-email", "prof@test.cd"}, wantErr: course.ErrNotFound},
		{name: "assign", args: []string{"assign", "-course", "c1", "-email", "Prof@test.cd"}},
	}
	runCLITests(t, env.cli, tests, nil)

	c, err := env.courseRepo.GetCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "COSC", c.Department)

	ok, err := env.courseRepo.IsInstructor(ctx, "c1", "prof@test.cd")
	require.NoError(t, err)
	assert.True(t, ok)
}

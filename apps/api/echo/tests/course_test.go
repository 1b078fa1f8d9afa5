package tests

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/coursepanel/apps/api/echo"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/user"
	"github.com/trezcool/coursepanel/tests"
)

func updatePath(courseID, email string) string {
	v := make(url.Values)
	v.Set("course_id", courseID)
	if email != "" {
		v.Set("instructor_email", email)
	}
	return "/v1/instructor/update_llm_model?" + v.Encode()
}

func Test_courseApi_listCourses(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	c1 := testutil.CreateCourse(t, env.courseRepo, "c1", "math 100 calculus", teacher.Email)
	c2 := testutil.CreateCourse(t, env.courseRepo, "c2", "cosc 499 capstone", teacher.Email)
	_ = testutil.CreateCourse(t, env.courseRepo, "c3", "phys 111 mechanics")

	teacherToken := getToken(t, teacher, env.conf)
	tests := []httpTest{
		{name: "auth required", path: "/v1/instructor/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher required", path: "/v1/instructor/courses", token: getToken(t, student, env.conf),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "someone else's courses", path: "/v1/instructor/courses?email=other@test.cd", token: teacherToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "own courses", path: "/v1/instructor/courses?email=Teacher@test.cd", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []course.Course{c2, c1}),
		},
		{name: "email defaults to the caller", path: "/v1/instructor/courses", token: teacherToken, wantCode: http.StatusOK, wantData: marchallObj(t, []course.Course{c2, c1})},
		{
			name: "admin on behalf of", path: "/v1/instructor/courses?email=teacher@test.cd", token: getToken(t, admin, env.conf),
			wantCode: http.StatusOK, wantData: marchallObj(t, []course.Course{c2, c1}),
		},
		{name: "no courses", path: "/v1/instructor/courses?email=admin@test.cd", token: getToken(t, admin, env.conf), wantCode: http.StatusOK, wantData: []byte(`[]`)},
	}
	runHTTPTests(t, env, tests)
}

func Test_courseApi_getModel(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleTeacher}, true)
	_ = testutil.CreateCourse(t, env.courseRepo, "c1", "math 100 calculus", teacher.Email)
	_ = testutil.CreateCourse(t, env.courseRepo, "c2", "cosc 499 capstone", teacher.Email)
	require.NoError(t, env.courseRepo.UpdateCourseModel(context.Background(), "c2", llm.ModelClaude3Haiku))

	token := getToken(t, teacher, env.conf)
	tests := []httpTest{
		{name: "auth required", path: "/v1/instructor/get_prompt?course_id=c1", wantCode: http.StatusUnauthorized},
		{name: "course_id required", path: "/v1/instructor/get_prompt", token: token, wantCode: http.StatusBadRequest},
		{
			name: "absent model", path: "/v1/instructor/get_prompt?course_id=c1", token: token,
			wantCode: http.StatusOK, wantData: []byte(`{"course_id":"c1"}`),
		},
		{
			name: "stored model", path: "/v1/instructor/get_prompt?course_id=c2", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, course.ModelConfig{CourseID: "c2", LLMModelID: llm.ModelClaude3Haiku}),
		},
		{
			name: "unknown course", path: "/v1/instructor/get_prompt?course_id=nope", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
		{
			name: "not an instructor", path: "/v1/instructor/get_prompt?course_id=c1", token: getToken(t, other, env.conf),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: course.ErrNotInstructor.Error()}),
		},
	}
	runHTTPTests(t, env, tests)
}

func Test_courseApi_updateModel(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleTeacher}, true)
	_ = testutil.CreateCourse(t, env.courseRepo, "c1", "math 100 calculus", teacher.Email)

	token := getToken(t, teacher, env.conf)
	body := func(modelID string) []byte { return marchallObj(t, map[string]string{"llm_model_id": modelID}) }

	tests := []httpTest{
		{name: "auth required", method: http.MethodPut, path: updatePath("c1", teacher.Email), body: body(llm.ModelClaude3Haiku), wantCode: http.StatusUnauthorized},
		{
			name: "someone else's email", method: http.MethodPut, path: updatePath("c1", other.Email), token: token,
			body: body(llm.ModelClaude3Haiku), wantCode: http.StatusForbidden,
		},
		{
			name: "unknown model", method: http.MethodPut, path: updatePath("c1", teacher.Email), token: token,
			body: body("gpt-2"), wantCode: http.StatusBadRequest, wantData: []byte(`{"llm_model_id":"unknown LLM model"}`),
		},
		{
			name: "missing model", method: http.MethodPut, path: updatePath("c1", teacher.Email), token: token,
			body: body(""), wantCode: http.StatusBadRequest, wantData: []byte(`{"llm_model_id":"this field is required"}`),
		},
		{
			name: "unknown course", method: http.MethodPut, path: updatePath("nope", teacher.Email), token: token,
			body: body(llm.ModelClaude3Haiku), wantCode: http.StatusNotFound,
		},
		{
			name: "not an instructor", method: http.MethodPut, path: updatePath("c1", other.Email), token: getToken(t, other, env.conf),
			body: body(llm.ModelClaude3Haiku), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: course.ErrNotInstructor.Error()}),
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, updatePath("c1", teacher.Email), token, body(llm.ModelClaude3Sonnet))
		env.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "LLM model updated successfully"})}, rec)

		c, err := env.courseRepo.GetCourse(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, llm.ModelClaude3Sonnet, c.LLMModelID)

		sent := env.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, teacher.Email, sent[0].To[0].Address)
		assert.True(t, strings.Contains(sent[0].TextContent, "Claude 3 Sonnet"))
	})
}

func Test_courseApi_admin(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin, env.conf)

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/courses", token: getToken(t, teacher, env.conf),
			body: marchallObj(t, course.NewCourse{Name: "math"}), wantCode: http.StatusForbidden,
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body:     marchallObj(t, course.NewCourse{ID: "c1", Name: " math 100 ", Department: "math", Number: "100"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, course.Course{ID: "c1", Name: "math 100", Department: "MATH", Number: "100"}),
		},
		{
			name: "duplicate", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: marchallObj(t, course.NewCourse{ID: "c1", Name: "math"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "assign", method: http.MethodPost, path: "/v1/courses/c1/instructors", token: adminToken,
			body: marchallObj(t, AssignInstructorRequest{Email: "Teacher@test.cd"}), wantCode: http.StatusNoContent,
		},
		{
			name: "assign unknown course", method: http.MethodPost, path: "/v1/courses/nope/instructors", token: adminToken,
			body: marchallObj(t, AssignInstructorRequest{Email: teacher.Email}), wantCode: http.StatusNotFound,
		},
	}
	runHTTPTests(t, env, tests)

	ok, err := env.courseRepo.IsInstructor(context.Background(), "c1", teacher.Email)
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_modelApi_list(t *testing.T) {
	env := setup(t)
	runHTTPTests(t, env, []httpTest{
		{
			name: "catalog", path: "/v1/models", wantCode: http.StatusOK,
			wantData: marchallObj(t, ModelsResponse{Models: llm.Default.List(), DefaultID: llm.DefaultModelID}),
		},
	})
}

func Test_home(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	env.serve(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to CoursePanel API!", rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/metrics")
	env.serve(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coursepanel_api_requests_total")
}

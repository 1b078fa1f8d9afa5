package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/coursepanel/apps/api/echo"
	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/user"
	emailsvc "github.com/trezcool/coursepanel/services/email"
	logsvc "github.com/trezcool/coursepanel/services/logger"
	inmemdb "github.com/trezcool/coursepanel/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app        *Server
	conf       *core.Config
	usrRepo    user.Repository
	courseRepo course.Repository
	mailSvc    interface{ SentMessages() []core.EmailMessage }
}

func setup(t *testing.T) testEnv {
	t.Helper()

	conf := core.NewTestConfig()
	db := inmemdb.Open()
	env := testEnv{
		conf:       conf,
		usrRepo:    inmemdb.NewUserRepository(db),
		courseRepo: inmemdb.NewCourseRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.mailSvc = mailSvc

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	llm.InitValidators(validate, translator, llm.Default)
	user.InitValidators(validate, translator)

	env.app = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewStdLogger(testLog(t), logsvc.LevelError),
		UserSvc:    user.NewService(env.usrRepo),
		CourseSvc:  course.NewService(env.courseRepo, llm.Default, mailSvc, conf),
		Catalog:    llm.Default,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = env.app.Close() })
	return env
}

func (env testEnv) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	env.app.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User, conf *core.Config) string {
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, tt.wantCode, rec.Code, "body = %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env testEnv, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			env.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

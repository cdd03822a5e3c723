package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/filter"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type loggerMock struct{}

func (loggerMock) Debug(string, ...interface{}) {}
func (loggerMock) Info(string, ...interface{})  {}
func (loggerMock) Warn(string, ...interface{})  {}
func (loggerMock) Error(string, ...interface{}) {}
func (loggerMock) Fatal(string, ...interface{}) {}

func newTestConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Gradebook",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}
}

type testApp struct {
	server *echoapi.Server
	auth   *echoapi.Authenticator
	db     *inmemdb.DB
	users  user.Repository
}

func setup(t *testing.T) testApp {
	conf := newTestConfig()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	courses := inmemdb.NewCourseRepository(db)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     loggerMock{},
		Validate:   validate,
		Translator: translator,
		UserSvc:    user.NewService(usrRepo, validate),
		Courses:    courses,
		Resolver:   filter.NewResolver(courses),
		Builder:    gradebook.NewBuilder(courses, loggerMock{}),
	})
	t.Cleanup(func() { _ = server.Close() })

	return testApp{server: server, auth: echoapi.NewAuthenticator(conf), db: db, users: usrRepo}
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
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.auth.GenerateToken(app.auth.UserClaims(usr))
	require.NoError(t, err, "getToken() failed")
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err, "marshalObj() failed")
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code)
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

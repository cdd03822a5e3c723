package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	pwd := "Gr4debook!Zx"
	testutil.CreateUser(t, app.users, "Prof", "prof", "prof@school.edu", pwd, []string{user.RoleProfessor}, true)
	testutil.CreateUser(t, app.users, "Gone", "gone", "gone@school.edu", pwd, []string{user.RoleProfessor}, false)

	login := func(uname, pwd string) []byte {
		return marshalObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: login("nobody", pwd), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: login("prof", "nope"), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", body: login("gone", pwd), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "by username", body: login(" PROF ", pwd), wantCode: http.StatusOK},
		{name: "by email", body: login("prof@school.edu", pwd), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/login"
			rec := app.do(tt)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	prof := testutil.CreateUser(t, app.users, "Prof", "prof", "prof@school.edu", "", []string{user.RoleProfessor}, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "refreshed", token: app.getToken(t, prof), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/token-refresh"
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

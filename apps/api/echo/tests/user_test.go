package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/semsync/semsync/apps/api/echo"
	"github.com/semsync/semsync/core/user"
	testutil "github.com/semsync/semsync/tests"
)

const strongPwd = "C0b0l&Compilers"

func Test_userApi_register(t *testing.T) {
	resetDB(t)

	_ = testutil.CreateUser(t, usrRepo, "Grace", "grace_hopper", "grace@semsync.io", strongPwd, true)
	path := "/api/users/register"

	runHTTPTests(t, []httpTest{
		{
			name: "username or email required", method: http.MethodPost, path: path,
			body:     []byte(`{"name": "Bob", "password": "C0b0l&Compilers", "passwordConfirm": "C0b0l&Compilers"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"username": "one of username or email is required",
				"email":    "one of username or email is required",
			}),
		},
		{
			name: "weak password", method: http.MethodPost, path: path,
			body:     []byte(`{"name": "Bob", "username": "bobby_b", "password": "password", "passwordConfirm": "password"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "username taken", method: http.MethodPost, path: path,
			body:     []byte(`{"name": "Grace", "username": "Grace_Hopper", "password": "C0b0l&Compilers", "passwordConfirm": "C0b0l&Compilers"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: path,
			body:     []byte(`{"name": "Grace", "email": " GRACE@semsync.io", "password": "C0b0l&Compilers", "passwordConfirm": "C0b0l&Compilers"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	})

	t.Run("register", func(t *testing.T) {
		rec := serve(httpTest{
			method: http.MethodPost, path: path,
			body: []byte(`{"name": " Ada Lovelace ", "username": "Ada_Lovelace", "email": "ADA@semsync.io", "password": "C0b0l&Compilers", "passwordConfirm": "C0b0l&Compilers"}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "password")

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "Ada Lovelace", usr.Name)
		assert.Equal(t, "ada_lovelace", usr.Username)
		assert.Equal(t, "ada@semsync.io", usr.Email)
		assert.True(t, usr.IsActive)

		stored, err := usrRepo.GetUserByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword(strongPwd))
	})
}

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada_lovelace", "ada@semsync.io", strongPwd, true)
	_ = testutil.CreateUser(t, usrRepo, "Alan", "alan_turing", "", strongPwd, false)
	path := "/api/users/login"
	authFailed := marshalObj(t, httpErr{Error: "authentication failed"})

	runHTTPTests(t, []httpTest{
		{
			name: "fields required", method: http.MethodPost, path: path, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: path,
			body: []byte(`{"username": "charles", "password": "C0b0l&Compilers"}`), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong password", method: http.MethodPost, path: path,
			body: []byte(`{"username": "ada_lovelace", "password": "c0b0l&compilers"}`), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "deactivated", method: http.MethodPost, path: path,
			body: []byte(`{"username": "alan_turing", "password": "C0b0l&Compilers"}`), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	t.Run("login", func(t *testing.T) {
		rec := serve(httpTest{method: http.MethodPost, path: path, body: []byte(`{"username": " ADA@semsync.io ", "password": "C0b0l&Compilers"}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarshal(t, rec, &resp)
		require.NotEmpty(t, resp.Token)

		stored, err := usrRepo.GetUserByID(context.Background(), ada.ID)
		require.NoError(t, err)
		assert.False(t, stored.LastLogin.IsZero(), "lastLogin is set")

		tt := httpTest{path: "/api/users/me", token: resp.Token, wantCode: http.StatusOK, wantData: marshalObj(t, stored)}
		checkCodeAndData(t, tt, serve(tt))
	})
}

func Test_userApi_tokens(t *testing.T) {
	resetDB(t)

	ada := testutil.CreateUser(t, usrRepo, "Ada", "ada_lovelace", "ada@semsync.io", strongPwd, true)
	alan := testutil.CreateUser(t, usrRepo, "Alan", "alan_turing", "", strongPwd, false)
	ghost := user.User{ID: uuid.New().String(), Username: "ghost"}
	path := "/api/users/token-refresh"

	expired := GetUserClaims(conf, ada)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expiredToken, err := GenerateToken(conf, expired)
	require.NoError(t, err)

	runHTTPTests(t, []httpTest{
		{name: "me (no token)", path: "/api/users/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "me (expired)", path: "/api/users/me", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken)},
		{
			name: "me (unknown user)", path: "/api/users/me", token: getToken(t, conf, ghost),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "me", path: "/api/users/me", token: getToken(t, conf, ada), wantCode: http.StatusOK, wantData: marshalObj(t, ada)},
		{name: "refresh (no token)", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "refresh (deactivated)", method: http.MethodPost, path: path, token: getToken(t, conf, alan),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh (expired)", method: http.MethodPost, path: path,
			token:    getToken(t, conf, ada, time.Now().Add(-conf.Server.JWTRefreshExpirationDelta-time.Minute).Unix()),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		},
	})

	t.Run("refresh", func(t *testing.T) {
		origIat := time.Now().Add(-time.Hour).Unix()
		rec := serve(httpTest{method: http.MethodPost, path: path, token: getToken(t, conf, ada, origIat)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarshal(t, rec, &resp)
		require.NotEmpty(t, resp.Token)

		// the refreshed token keeps the original issue time
		refresh := serve(httpTest{method: http.MethodPost, path: path, token: resp.Token})
		assert.Equal(t, http.StatusOK, refresh.Code)

		tt := httpTest{path: "/api/users/me", token: resp.Token, wantCode: http.StatusOK, wantData: marshalObj(t, ada)}
		checkCodeAndData(t, tt, serve(tt))
	})
}

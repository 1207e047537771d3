package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizetz/gbairai/internal/auth"
	"github.com/gizetz/gbairai/internal/models"
)

func TestSignup(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{"username": "testuser", "email": "test@example.com", "password": "password123"}

	rr := ts.do("POST", "/signup", 0, body)
	if status := rr.Code; status != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}
	created := decode[map[string]any](t, rr)
	assert.NotContains(t, created, "password")
	assert.Equal(t, false, created["is_verified"])

	rr = ts.do("POST", "/signup", 0, body)
	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code for duplicate user: got %v want %v",
			status, http.StatusConflict)
	}
}

func TestSignup_Validation(t *testing.T) {
	ts := newTestServer(t)
	tests := []map[string]string{
		{"username": "x", "email": "x@example.com", "password": "password123"},
		{"username": "valid_name", "email": "nope", "password": "password123"},
		{"username": "valid_name", "email": "x@example.com", "password": "short"},
	}
	for _, body := range tests {
		rr := ts.do("POST", "/signup", 0, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, "VALIDATION", decode[errorBody](t, rr).Code)
	}
}

func TestSignupVerifyLogin(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do("POST", "/signup", 0, map[string]string{"username": "ama", "email": "ama@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, rr.Code)

	token := ts.mailer.tokens["ama@example.com"]
	require.NotEmpty(t, token)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/verify?token=wrong", 0, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do("GET", "/verify?token="+token, 0, nil).Code)

	rr = ts.do("POST", "/login", 0, Credentials{Username: "ama", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do("POST", "/login", 0, Credentials{Username: "ama", Password: "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode[models.User](t, rr)
	assert.True(t, user.IsVerified)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	id, err := ts.signer.VerifyUserID(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	me := ts.do("GET", "/me", user.ID, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ama", decode[models.User](t, me).Username)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do("POST", "/login", 0, Credentials{Username: "ghost", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSearchUsers(t *testing.T) {
	ts := newTestServer(t)
	ama := ts.user("ama")
	ts.user("amadou")
	ts.user("kofi")

	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/users/search?q=am", 0, nil).Code)

	rr := ts.do("GET", "/users/search?q=am", ama.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[[]models.User](t, rr)
	require.Len(t, users, 2)
	assert.Equal(t, "ama", users[0].Username)
	assert.NotEqual(t, "ama@example.com", users[0].Email)

	rr = ts.do("GET", "/users/search?q=", ama.ID, nil)
	assert.Empty(t, decode[[]models.User](t, rr))
}

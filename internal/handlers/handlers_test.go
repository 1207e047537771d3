package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gizetz/gbairai/internal/auth"
	"github.com/gizetz/gbairai/internal/dm"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/moderation"
	"github.com/gizetz/gbairai/internal/store/sqlstore"
)

type fakeMailer struct {
	tokens map[string]string
}

func (f *fakeMailer) SendVerificationEmail(to, _, token string) error {
	f.tokens[to] = token
	return nil
}

type testServer struct {
	t      *testing.T
	store  *sqlstore.SQLStore
	signer *auth.Signer
	mailer *fakeMailer
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer := auth.NewSigner("test-secret")
	mailer := &fakeMailer{tokens: map[string]string{}}
	svc := dm.NewService(s, dm.Options{Logger: logger})

	router := NewRouter(RouterConfig{
		Auth:           &AuthHandler{Store: s, Signer: signer, Mailer: mailer, Logger: logger},
		DM:             &DMHandler{Service: svc, Policy: moderation.Basic{MaxLength: 20}, Logger: logger},
		Signer:         signer,
		Logger:         logger,
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{t: t, store: s, signer: signer, mailer: mailer, router: router}
}

func (ts *testServer) user(username string) *models.User {
	ts.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", CreatedAt: time.Now().UTC()}
	require.NoError(ts.t, ts.store.CreateUser(context.Background(), u))
	return u
}

// do sends a request as userID (0 for anonymous) and returns the recorder.
func (ts *testServer) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: ts.signer.SignUserID(userID)})
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

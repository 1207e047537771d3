package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	CookieName = "user_id"
	sessionTTL = 7 * 24 * time.Hour
)

var ErrInvalidCookie = errors.New("invalid session cookie")

// Signer produces and checks HMAC-SHA256 signed session values of the
// form "base64(user id)|base64(signature)".
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

func (s *Signer) sign(value string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

func (s *Signer) SignUserID(userID int64) string {
	value := strconv.FormatInt(userID, 10)
	return base64.URLEncoding.EncodeToString([]byte(value)) + "|" + base64.URLEncoding.EncodeToString(s.sign(value))
}

func (s *Signer) VerifyUserID(signed string) (int64, error) {
	encValue, encSig, ok := strings.Cut(signed, "|")
	if !ok {
		return 0, errors.Wrap(ErrInvalidCookie, "format")
	}
	value, err := base64.URLEncoding.DecodeString(encValue)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidCookie, "value encoding")
	}
	sig, err := base64.URLEncoding.DecodeString(encSig)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidCookie, "signature encoding")
	}
	if !hmac.Equal(sig, s.sign(string(value))) {
		return 0, errors.Wrap(ErrInvalidCookie, "signature")
	}
	id, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrap(ErrInvalidCookie, "user id")
	}
	return id, nil
}

// SessionCookie returns the cookie Login sets for userID.
func (s *Signer) SessionCookie(userID int64, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    s.SignUserID(userID),
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

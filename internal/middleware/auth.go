// Package middleware содержит HTTP middleware банкомата.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const accountNumberKey contextKey = "accountNumber"

const (
	authCookieName = "atm_session"
	authCookieTTL  = 15 * time.Minute
)

// AuthMiddleware выполняет проверку сессии клиента по подписанному cookie.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
// Пустой ключ заменяется случайным, и сессии не переживают перезапуск.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware проверяет cookie сессии и добавляет номер счёта в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		accountNumber, ok := a.parseCookie(cookie.Value)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), accountNumberKey, accountNumber)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetAuthCookie открывает сессию для указанного номера счёта.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, accountNumber string) {
	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    a.sign(accountNumber),
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// ClearAuthCookie завершает сессию.
func (a *AuthMiddleware) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthMiddleware) signature(accountNumber string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(accountNumber))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) sign(accountNumber string) string {
	return accountNumber + "." + a.signature(accountNumber)
}

func (a *AuthMiddleware) parseCookie(cookieValue string) (string, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}

	accountNumber, signature := parts[0], parts[1]
	if !hmac.Equal([]byte(signature), []byte(a.signature(accountNumber))) {
		return "", false
	}

	return accountNumber, true
}

// GetAccountNumberFromContext извлекает номер счёта из контекста запроса.
func GetAccountNumberFromContext(ctx context.Context) (string, bool) {
	number, ok := ctx.Value(accountNumberKey).(string)
	return number, ok
}

package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

// StaffRole — роль в токене, дающая доступ к админке.
const StaffRole = "staff"

// SessionID возвращает идентификатор сессии покупателя из контекста.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// Session выдаёт покупателю cookie с идентификатором сессии, если её ещё нет или она повреждена.
func Session(authCfg *cfg.AuthCfg, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(authCfg.CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     authCfg.CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   authCfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, sid)))
		})
	}
}

// StaffClaims — содержимое токена сотрудника.
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// StaffOnly пропускает только запросы с валидным HS256-токеном сотрудника в заголовке Authorization.
func StaffOnly(secret string, log logger.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" || len(key) == 0 {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			claims := &StaffClaims{}
			_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil {
				log.Warnf("rejected staff token: %s", err.Error())
				WriteError(w, e.ErrUnauthorized)
				return
			}

			if claims.Role != StaffRole {
				WriteError(w, e.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IssueStaffToken подписывает токен сотрудника. Используется утилитами и тестами.
func IssueStaffToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty jwt secret")
	}

	now := time.Now()
	claims := StaffClaims{
		Role: StaffRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequestLogger пишет в лог метод, путь, статус и длительность каждого запроса.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			reqLog := log.With("request_id", middleware.GetReqID(r.Context()))
			if status >= http.StatusInternalServerError {
				reqLog.Warnf("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
				return
			}
			reqLog.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
		})
	}
}

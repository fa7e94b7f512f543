package handler

import (
	"context"
	"go-bank-console/common"
	"go-bank-console/logger"
	"go-bank-console/service"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	SessionIDKey contextKey = "sessionID"
	FormTokenKey contextKey = "formToken"
)

const (
	sessionCookieName = "console_session"
	formTokenField    = "csrf_token"
)

// OperatorAuthMiddleware requires HTTP basic auth as the configured operator.
// It passes everything through when no operator password is configured.
func OperatorAuthMiddleware(auth *service.AuthService, next http.Handler) http.Handler {
	if !auth.OperatorAuthEnabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !auth.CheckOperator(user, password) {
			logger.Log.WithField("user", user).Warn("Rejected operator credentials")
			w.Header().Set("WWW-Authenticate", `Basic realm="bank-console", charset="UTF-8"`)
			err := common.NewAppError(http.StatusUnauthorized, "Operator credentials are required", nil)
			err.Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware makes sure every request carries a session id, reusing
// the one in a valid session cookie or issuing a new one.
func SessionMiddleware(auth *service.AuthService, ttl time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id, _ = auth.ParseSessionToken(cookie.Value)
		}

		if id == "" {
			id = uuid.NewString()
			token, err := auth.IssueSessionToken(id)
			if err != nil {
				err := common.NewAppError(http.StatusInternalServerError, "Could not start a session", err)
				err.Send(w)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FormTokenMiddleware guards every state-changing request against cross-site
// submission. It must run inside SessionMiddleware. Safe requests get a fresh
// form token in the context for the page to embed; unsafe ones must come from
// this origin and post back a token issued for the same session.
func FormTokenMiddleware(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionID(r.Context())
		log := logger.Log.WithField("method", r.Method).WithField("path", r.URL.Path)

		if !isSafeMethod(r.Method) {
			if !sameOrigin(r) {
				log.WithField("origin", r.Header.Get("Origin")).Warn("Rejected cross-site form submission")
				err := common.NewAppError(http.StatusForbidden, "Cross-site requests are not allowed", nil)
				err.Send(w)
				return
			}
			if err := auth.CheckFormToken(r.PostFormValue(formTokenField), session); err != nil {
				log.Warn("Rejected form submission without a valid form token")
				err := common.NewAppError(http.StatusForbidden, "The form has expired. Reload the page and try again.", err)
				err.Send(w)
				return
			}
		}

		token, err := auth.IssueFormToken(session)
		if err != nil {
			err := common.NewAppError(http.StatusInternalServerError, "Could not start a session", err)
			err.Send(w)
			return
		}
		ctx := context.WithValue(r.Context(), FormTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// sameOrigin uses the browser's fetch metadata and Origin headers. Clients
// that send neither, such as curl, fall through to the token check.
func sameOrigin(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == r.Host
}

func formToken(ctx context.Context) string {
	token, _ := ctx.Value(FormTokenKey).(string)
	return token
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

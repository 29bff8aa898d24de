package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"marketBack/internal/handlers"
	"marketBack/internal/models"
)

var errNoCredentials = errors.New("authorization header missing or invalid")

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.infoLog.Printf("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.errorLog.Output(2, fmt.Sprintf("%s\n%s", err.Error(), debug.Stack()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// authenticate validates the bearer token. An invalid access token falls back
// to the Refresh-Token header; a fresh access token is then returned in the
// Authorization response header.
func (app *application) authenticate(w http.ResponseWriter, r *http.Request) (*models.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	refreshToken := r.Header.Get("Refresh-Token")
	if !strings.HasPrefix(authHeader, "Bearer ") && refreshToken == "" {
		return nil, errNoCredentials
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		claims, err := app.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err == nil {
			return claims, nil
		}
	}

	if refreshToken == "" {
		return nil, errors.New("refresh token missing")
	}
	session, accessToken, err := app.userService.Refresh(r.Context(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	w.Header().Set("Authorization", "Bearer "+accessToken)
	return &models.Claims{UserID: uint(session.UserID), Role: session.Role}, nil
}

func withClaims(r *http.Request, claims *models.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), handlers.ContextUserID, int(claims.UserID))
	ctx = context.WithValue(ctx, handlers.ContextRole, claims.Role)
	return r.WithContext(ctx)
}

func (app *application) JWTMiddleware(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.authenticate(w, r)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		if requiredRole == models.RoleAdmin && claims.Role != models.RoleAdmin {
			http.Error(w, "Forbidden: only admins allowed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, withClaims(r, claims))
	})
}

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

// identify attaches the caller when valid credentials are present and lets
// anonymous requests through; handlers decide how to answer them.
func (app *application) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.authenticate(w, r)
		if err != nil {
			if !errors.Is(err, errNoCredentials) {
				app.infoLog.Printf("anonymous request to %s: %v", r.URL.Path, err)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the image API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, Authentication, Panic Recovery, and CORS.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/constants"
	"github.com/taibuivan/yomira-image/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-image/internal/platform/respond"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to inject fakes during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// AuthOptions configures how [Authenticate] resolves the calling account.
type AuthOptions struct {
	// Verifier checks "Bearer <jwt>" headers. Nil disables JWT authentication.
	Verifier TokenVerifier

	// MasterTokenHash is the bcrypt hash of the master token. Empty disables it.
	MasterTokenHash string

	// Disabled attaches the super-user to every request.
	Disabled bool
}

// Authenticate resolves the [sec.Account] for a request from the Authorization header.
//
// # Flow
//  1. If authentication is disabled, attach the super-user.
//  2. If the header is absent, the request proceeds as anonymous.
//  3. "Bearer <token>" is verified as a JWT via [TokenVerifier].
//  4. Any other value is compared against the master token hash.
//  5. The account is injected into the context and the request logger.
func Authenticate(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Authentication Disabled ────────────────────────────────────
			if opts.Disabled {
				serveWithAccount(next, writer, request, sec.SuperUser(constants.SuperUserID))
				return
			}

			authHeader := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Bearer Token ───────────────────────────────────────────────
			scheme, token, found := strings.Cut(authHeader, " ")
			if found && strings.EqualFold(scheme, "bearer") && opts.Verifier != nil {
				claims, err := opts.Verifier.VerifyToken(strings.TrimSpace(token))
				if err != nil {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}
				serveWithAccount(next, writer, request, claims.Account())
				return
			}

			// ── 4. Master Token ───────────────────────────────────────────────
			if sec.CheckTokenHash(authHeader, opts.MasterTokenHash) {
				serveWithAccount(next, writer, request, sec.SuperUser(constants.SuperUserID))
				return
			}

			respond.Error(writer, request, apperr.Unauthorized("Invalid authorization token"))
		})
	}
}

// serveWithAccount injects account into the context and the request logger.
func serveWithAccount(next http.Handler, writer http.ResponseWriter, request *http.Request, account *sec.Account) {
	ctx := ctxutil.WithAccount(request.Context(), account)
	logger := ctxutil.GetLogger(ctx).With(slog.String("account_id", account.ID))
	ctx = ctxutil.WithLogger(ctx, logger)

	next.ServeHTTP(writer, request.WithContext(ctx))
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. Routes that allow
// anonymous reads are mounted without it.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAccount(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

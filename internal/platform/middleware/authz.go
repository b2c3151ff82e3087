// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/ctxutil"
	"github.com/taibuivan/espy/internal/platform/respond"
	"github.com/taibuivan/espy/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.OperatorClaims, error)
}

// Credentials configures [Authenticate]. A nil Verifier disables bearer
// tokens and an empty APIKeyHash disables API keys. With both disabled,
// every request acts as the local operator.
type Credentials struct {
	Verifier   TokenVerifier
	APIKeyHash string
}

func (credentials Credentials) enabled() bool {
	return credentials.Verifier != nil || credentials.APIKeyHash != ""
}

// localOperator is attached when no credential source is configured.
var localOperator = &sec.OperatorClaims{Operator: "local", Scopes: []string{constants.ScopeCatalogWrite}}

// apiKeyOperator is attached to requests presenting the operator API key.
var apiKeyOperator = &sec.OperatorClaims{Operator: "api-key", Scopes: []string{constants.ScopeCatalogWrite}}

// Authenticate resolves the operator behind a request.
//
// # Flow
//  1. No credential source configured: attach the local operator.
//  2. X-Api-Key header: compare against the bcrypt hash.
//  3. Authorization: Bearer header: verify the JWT via [TokenVerifier].
//  4. Nothing presented: the request proceeds anonymously.
func Authenticate(credentials Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Open Mode ──────────────────────────────────────────────────
			if !credentials.enabled() {
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithOperator(request.Context(), localOperator)))
				return
			}

			// ── 2. API Key ────────────────────────────────────────────────────
			if key := request.Header.Get(constants.HeaderAPIKey); key != "" {
				if credentials.APIKeyHash == "" || !sec.CheckAPIKey(key, credentials.APIKeyHash) {
					respond.Error(writer, request, apperr.Unauthorized("Invalid API key"))
					return
				}
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithOperator(request.Context(), apiKeyOperator)))
				return
			}

			// ── 3. Bearer Token ───────────────────────────────────────────────
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || credentials.Verifier == nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := credentials.Verifier.VerifyToken(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithOperator(request.Context(), claims)))
		})
	}
}

// RequireOperator blocks requests whose operator lacks the catalog write scope.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireOperator(next http.Handler) http.Handler {
	return RequireScope(constants.ScopeCatalogWrite)(next)
}

// RequireScope blocks requests whose operator does not hold scope.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetOperator(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Operator credentials required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !claims.HasScope(scope) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient scope"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"go.uber.org/zap"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	MemberID uint
	Role     string
}

type contextKey struct{}

var principalKey = contextKey{}

// PrincipalFrom returns the request's principal, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// withAuth parses a Bearer token when present and attaches the principal. An
// invalid token fails the request even on public routes.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.writeError(w, r, apperr.Unauthorized("authorization header must use the Bearer scheme"))
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		principal := Principal{MemberID: claims.MemberID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
	})
}

// requireAuth guards handlers that need an authenticated member.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		next(w, r, principal)
	}
}

// requireAdmin guards handlers reserved for administrators.
func (s *Server) requireAdmin(next func(http.ResponseWriter, *http.Request, Principal)) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request, principal Principal) {
		if principal.Role != models.RoleAdmin {
			s.writeError(w, r, apperr.Forbidden("administrator role required"))
			return
		}
		next(w, r, principal)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
)

type Verifier interface {
	Verify(ctx context.Context, raw string) (auth.Identity, error)
}

// bearerToken pulls the token out of an Authorization value. The scheme is
// matched case-insensitively and the token must be non-empty.
func bearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func Authenticate(v Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, log, apperr.Unauthenticated())
				return
			}
			id, err := v.Verify(r.Context(), raw)
			if err != nil {
				log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				WriteError(w, log, apperr.Unauthenticated())
				return
			}
			noteUser(r.Context(), id.UserID)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through only identities holding one of roles. It must run
// after Authenticate.
func RequireRole(log *zap.Logger, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, log, apperr.Unauthenticated())
				return
			}
			if !slices.Contains(roles, id.Role) {
				WriteError(w, log, apperr.Forbidden("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	methodRegister = "/mediconnect.v1.MediConnect/Register"
	methodLogin    = "/mediconnect.v1.MediConnect/Login"
	healthPrefix   = "/grpc.health.v1.Health/"
)

// skip auth for these
var open = map[string]bool{
	methodRegister: true,
	methodLogin:    true,
}

func Auth(v Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		var raw string
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw, ok = bearerToken(vals[0])
		}
		if !ok || raw == "" {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		id, err := v.Verify(ctx, raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return next(WithIdentity(ctx, id), req)
	}
}

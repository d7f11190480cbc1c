package domain

import "context"

type contextKey string

// AdminContextKey carries the verified *AdminClaims through a request context.
const AdminContextKey contextKey = "admin_claims"

// AdminClaims is the identity extracted from a verified access token.
type AdminClaims struct {
	Subject string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (accessToken string, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	ValidateAccessToken(ctx context.Context, token string) (*AdminClaims, error)
}

// AdminFromContext returns the admin identity set by the authentication middleware.
func AdminFromContext(ctx context.Context) (*AdminClaims, bool) {
	claims, ok := ctx.Value(AdminContextKey).(*AdminClaims)
	return claims, ok
}

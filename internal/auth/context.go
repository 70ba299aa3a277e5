package auth

import "context"

// contextKey is unexported so only this package can place claims on a
// context.
type contextKey struct{}

var claimsKey contextKey

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims. The second return is
// false when the request never passed through the middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

package auth

import (
	"context"

	"connectrpc.com/connect"
)

// LocalDevUserID is the user injected by LocalDevInterceptor.
const LocalDevUserID = "local-dev-user"

// LocalDevInterceptor provides a mock user context for local development.
// Claims already set by an earlier interceptor are left alone.
func LocalDevInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if isPublicEndpoint(req.Spec().Procedure) {
				return next(ctx, req)
			}
			if _, ok := GetUserClaims(ctx); ok {
				return next(ctx, req)
			}

			ctx = withUserClaims(ctx, &UserClaims{
				UID:         LocalDevUserID,
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
				Verified:    true,
				Operator:    true,
			})
			return next(ctx, req)
		}
	}
}

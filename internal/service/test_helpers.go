package service

import (
	"context"

	"github.com/castlemilk/taxpilot/backend/internal/auth"
)

// testContextWithUser creates a context with authenticated user claims for testing
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
	})
}

// testContextWithOperator creates a context for an operator
func testContextWithOperator(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:      userID,
		Email:    userID + "@test.local",
		Operator: true,
	})
}

package auth

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
)

// RequireAuth extracts user claims from context or returns an unauthenticated error
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("user not authenticated"))
	}
	return claims, nil
}

// RequireUserAccess verifies the authenticated user matches the requested user ID
func RequireUserAccess(ctx context.Context, requestedUserID string) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if requestedUserID != "" && requestedUserID != claims.UID {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("cannot access another user's resources"))
	}

	return claims, nil
}

// RequireOperator verifies the caller holds the operator claim
func RequireOperator(ctx context.Context) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.Operator {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("operator privileges required"))
	}
	return claims, nil
}

// IsAccountMember checks if a user belongs to an account
func IsAccountMember(userID string, account *domain.Account) bool {
	return GetUserRoleInAccount(userID, account) != ""
}

// GetUserRoleInAccount returns the role of a user in an account, or "" if the
// user is not a member
func GetUserRoleInAccount(userID string, account *domain.Account) domain.AccountRole {
	if account == nil || userID == "" {
		return ""
	}

	// Owner has highest role
	if account.OwnerID == userID {
		return domain.RoleOwner
	}

	for _, member := range account.Members {
		if member.UserID == userID {
			if member.Role == "" {
				return domain.RoleMember
			}
			return member.Role
		}
	}

	return ""
}

// IsAccountAdminOrOwner checks if a user has admin privileges in an account
func IsAccountAdminOrOwner(userID string, account *domain.Account) bool {
	role := GetUserRoleInAccount(userID, account)
	return role == domain.RoleOwner || role == domain.RoleAdmin
}

// CanWriteAccount checks if a user may create or change records in an account.
// Viewers are read-only.
func CanWriteAccount(userID string, account *domain.Account) bool {
	role := GetUserRoleInAccount(userID, account)
	return role != "" && role != domain.RoleViewer
}

// NormalizePageSize returns a valid page size (default 100, max 1000)
func NormalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return 100
	}
	if pageSize > 1000 {
		return 1000
	}
	return pageSize
}

// WrapStoreError wraps store errors with operation context
func WrapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

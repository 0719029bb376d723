package auth

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		expectedErr bool
		errContains string
		wantToken   string
	}{
		{
			name:        "empty header",
			authHeader:  "",
			expectedErr: true,
			errContains: "authorization header is required",
		},
		{
			name:        "no bearer prefix",
			authHeader:  "token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "wrong prefix",
			authHeader:  "Basic token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "bearer only no token",
			authHeader:  "Bearer",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "valid bearer token",
			authHeader:  "Bearer mytoken123",
			expectedErr: false,
			wantToken:   "mytoken123",
		},
		{
			name:        "bearer lowercase",
			authHeader:  "bearer mytoken456",
			expectedErr: false,
			wantToken:   "mytoken456",
		},
		{
			name:        "bearer mixed case",
			authHeader:  "BEARER mytoken789",
			expectedErr: false,
			wantToken:   "mytoken789",
		},
		{
			name:        "token with spaces",
			authHeader:  "Bearer token with spaces",
			expectedErr: false,
			wantToken:   "token with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.authHeader)

			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestContextUserClaims(t *testing.T) {
	t.Run("WithUserClaims adds claims to context", func(t *testing.T) {
		ctx := context.Background()
		claims := &UserClaims{
			UID:         "test-uid",
			Email:       "test@example.com",
			DisplayName: "Test User",
			Picture:     "https://example.com/pic.jpg",
			Verified:    true,
		}

		newCtx := WithUserClaims(ctx, claims)

		retrievedClaims, ok := GetUserClaims(newCtx)
		require.True(t, ok)
		assert.Equal(t, claims.UID, retrievedClaims.UID)
		assert.Equal(t, claims.Email, retrievedClaims.Email)
		assert.Equal(t, claims.DisplayName, retrievedClaims.DisplayName)
		assert.Equal(t, claims.Picture, retrievedClaims.Picture)
		assert.Equal(t, claims.Verified, retrievedClaims.Verified)
	})

	t.Run("GetUserClaims returns false for empty context", func(t *testing.T) {
		ctx := context.Background()

		claims, ok := GetUserClaims(ctx)
		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("GetUserID returns UID when claims exist", func(t *testing.T) {
		ctx := context.Background()
		claims := &UserClaims{UID: "user-123"}
		ctx = WithUserClaims(ctx, claims)

		uid, ok := GetUserID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-123", uid)
	})

	t.Run("GetUserID returns empty for empty context", func(t *testing.T) {
		ctx := context.Background()

		uid, ok := GetUserID(ctx)
		assert.False(t, ok)
		assert.Empty(t, uid)
	})
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		procedure string
		expected  bool
	}{
		{"health endpoint", "/health", true},
		{"ping endpoint", "/ping", true},
		{"tax service endpoint", "/taxpilot.v1.TaxService/SyncCalendar", false},
		{"other endpoint", "/api/v1/users", false},
		{"empty endpoint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicEndpoint(tt.procedure))
		})
	}
}

func TestClaimsFromToken(t *testing.T) {
	claims := claimsFromToken("uid-1", map[string]interface{}{
		"email":          "user@example.com",
		"email_verified": true,
		"name":           "Jane Doe",
		"picture":        "https://example.com/p.png",
		"operator":       true,
	})
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.Verified)
	assert.Equal(t, "Jane Doe", claims.DisplayName)
	assert.True(t, claims.Operator)

	bare := claimsFromToken("uid-2", map[string]interface{}{"operator": "yes"})
	assert.False(t, bare.Operator)
	assert.Empty(t, bare.Email)
}

type fakeVerifier struct {
	tokens map[string]*UserClaims
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, idToken string) (*UserClaims, error) {
	if claims, ok := f.tokens[idToken]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// captureNext records the claims the handler saw.
func captureNext(seen **UserClaims) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if claims, ok := GetUserClaims(ctx); ok {
			*seen = claims
		}
		return connect.NewResponse(&struct{}{}), nil
	}
}

func TestAuthInterceptor(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*UserClaims{"good": {UID: "user-1"}}}

	tests := []struct {
		name     string
		header   string
		optional []string
		wantCode connect.Code
		wantUID  string
	}{
		{"missing header", "", nil, connect.CodeUnauthenticated, ""},
		{"not bearer", "Basic abc", nil, connect.CodeUnauthenticated, ""},
		{"bad token", "Bearer nope", nil, connect.CodeUnauthenticated, ""},
		{"valid token", "Bearer good", nil, 0, "user-1"},
		// connect.NewRequest leaves the procedure empty
		{"missing header on optional procedure", "", []string{""}, 0, ""},
		{"bad token on optional procedure", "Bearer nope", []string{""}, connect.CodeUnauthenticated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			var seen *UserClaims
			_, err := AuthInterceptor(verifier, tt.optional...)(captureNext(&seen))(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			if tt.wantUID == "" {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantUID, seen.UID)
			}
		})
	}
}

func TestDebugAuthInterceptor(t *testing.T) {
	t.Run("impersonates when auth is skipped", func(t *testing.T) {
		req := connect.NewRequest(&struct{}{})
		req.Header().Set("X-Debug-Impersonate-User", "alice")

		var seen *UserClaims
		_, err := DebugAuthInterceptor(true)(captureNext(&seen))(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.UID)
		assert.Equal(t, "alice@debug.local", seen.Email)
	})

	t.Run("ignores header when auth is enforced", func(t *testing.T) {
		req := connect.NewRequest(&struct{}{})
		req.Header().Set("X-Debug-Impersonate-User", "alice")

		var seen *UserClaims
		_, err := DebugAuthInterceptor(false)(captureNext(&seen))(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, seen)
	})
}

func TestLocalDevInterceptor(t *testing.T) {
	t.Run("injects local user", func(t *testing.T) {
		var seen *UserClaims
		_, err := LocalDevInterceptor()(captureNext(&seen))(context.Background(), connect.NewRequest(&struct{}{}))
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, LocalDevUserID, seen.UID)
		assert.True(t, seen.Operator)
	})

	t.Run("keeps existing claims", func(t *testing.T) {
		ctx := WithUserClaims(context.Background(), &UserClaims{UID: "alice"})

		var seen *UserClaims
		_, err := LocalDevInterceptor()(captureNext(&seen))(ctx, connect.NewRequest(&struct{}{}))
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.UID)
	})
}

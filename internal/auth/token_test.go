package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)
	user := &account.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Role: account.RoleClient}

	token, err := manager.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, account.RoleClient, claims.Role)
}

func TestTokenManager_Verify_Rejections(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)
	user := &account.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Role: account.RoleClient}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "wrong_secret",
			token: func(t *testing.T) string {
				other := auth.NewTokenManager("other-secret", time.Hour)
				token, err := other.Issue(user)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := auth.NewTokenManager("test-secret", -time.Minute)
				token, err := expired.Issue(user)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "unknown_role",
			token: func(t *testing.T) string {
				token, err := manager.Issue(&account.User{ID: user.ID, Role: account.Role("root")})
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token(t))
			assert.True(t, errors.Is(err, auth.ErrInvalidToken), "got %v", err)
		})
	}
}

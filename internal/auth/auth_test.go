package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", "bursar", time.Hour)
	id := auth.Identity{UserID: uuid.New(), Role: application.RoleFinance}

	token, expires, err := issuer.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestIssuer_Verify_Rejects(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", "bursar", time.Hour)
	id := auth.Identity{UserID: uuid.New(), Role: application.RoleStudent}

	token, _, err := issuer.Issue(id)
	require.NoError(t, err)

	expired, _, err := auth.NewIssuer("test-secret", "bursar", -time.Minute).Issue(id)
	require.NoError(t, err)

	otherSecret, _, err := auth.NewIssuer("other-secret", "bursar", time.Hour).Issue(id)
	require.NoError(t, err)

	otherIssuer, _, err := auth.NewIssuer("test-secret", "someone-else", time.Hour).Issue(id)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  id.UserID.String(),
		"role": "finance",
		"iss":  "bursar",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"Garbage":     "not-a-token",
		"Expired":     expired,
		"OtherSecret": otherSecret,
		"OtherIssuer": otherIssuer,
		"AlgNone":     none,
		"Tampered":    token + "x",
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestIssuer_Issue_SystemRole(t *testing.T) {
	_, _, err := auth.NewIssuer("s", "bursar", time.Hour).Issue(auth.Identity{UserID: uuid.New(), Role: application.RoleSystem})
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	_, ok := auth.IdentityFrom(context.Background())
	assert.False(t, ok)

	id := auth.Identity{UserID: uuid.New(), Role: application.RoleReviewer}
	got, ok := auth.IdentityFrom(auth.WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequence(t *testing.T) {
	assert.Equal(t, "0001", NextSequence(nil, "", 4))
	assert.Equal(t, "INV-0001", NextSequence([]string{}, "INV-", 4))
	assert.Equal(t, "0008", NextSequence([]string{"0003", "0007", "abc"}, "", 4))
	assert.Equal(t, "INV-0013", NextSequence([]string{"INV-0012", "INV-0002", "X-0099"}, "INV-", 4))
	assert.Equal(t, "FLT-10000", NextSequence([]string{"FLT-9999"}, "FLT-", 4))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Offset: 0}, NewPagination(0, 0))
	assert.Equal(t, Pagination{Page: 3, Limit: 5, Offset: 10}, NewPagination(3, 5))
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Offset: 0}, NewPagination(-2, -1))
	assert.Equal(t, Pagination{Page: 2, Limit: MaxPageLimit, Offset: MaxPageLimit}, NewPagination(2, 5000))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-04 10:11:12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC), got)

	got, err = ParseDate("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-03-04T10:11:12+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 4, 41, 12, 0, time.UTC), got)

	_, err = ParseDate("04/03/2025")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken("secret", id, "admin", "a@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "user", "u@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP()
	require.NoError(t, err)
	assert.Len(t, otp, 6)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

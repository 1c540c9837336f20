package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, Verify("s3cret", hash))
	assert.False(t, Verify("wrong", hash))
}

func TestHashWithCost_Salted(t *testing.T) {
	a, err := HashWithCost("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashWithCost("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashWithCost_OutOfRangeUsesDefault(t *testing.T) {
	hash, err := HashWithCost("pw", 1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestVerify_GarbageHash(t *testing.T) {
	assert.False(t, Verify("pw", "not-a-bcrypt-hash"))
}

func TestHashWithCost_TooLong(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := HashWithCost(string(long), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrTooLong)
}

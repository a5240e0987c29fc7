package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesSixDigitCodes(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, Length)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code must be numeric: %q", code)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestHashNeverStoresPlaintext(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)

	digest, err := Hash(code)
	require.NoError(t, err)

	assert.NotEqual(t, code, digest)
	assert.NotContains(t, digest, code)
}

func TestVerify(t *testing.T) {
	digest, err := Hash("483920")
	require.NoError(t, err)

	assert.True(t, Verify("483920", digest))
	assert.False(t, Verify("483921", digest))
	assert.False(t, Verify("", digest))
	assert.False(t, Verify("483920", "not-a-bcrypt-digest"))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("123456")
	require.NoError(t, err)
	second, err := Hash("123456")
	require.NoError(t, err)

	// Same plaintext, different digests.
	assert.NotEqual(t, first, second)
	assert.True(t, Verify("123456", first))
	assert.True(t, Verify("123456", second))
}

package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the tests fast
var testArgon2Params = Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	hash, err := h.Hash("supersecret@#password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)
	assert.NotContains(t, hash, "supersecret")

	ok, err := h.Verify("supersecret@#password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	a, err := h.Hash("p")
	require.NoError(t, err)
	b, err := h.Hash("p")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_VerifiesWithStoredParams(t *testing.T) {
	old := NewArgon2Hasher(Argon2Params{Time: 2, Memory: 2048, Threads: 2, SaltLen: 8, KeyLen: 16})
	hash, err := old.Hash("pw")
	require.NoError(t, err)

	ok, err := NewArgon2Hasher(testArgon2Params).Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	cases := map[string]string{
		"empty":             "",
		"wrong variant":     "$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"wrong version":     "$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"non-numeric param": "$argon2id$v=19$m=abc,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"bad salt":          "$argon2id$v=19$m=1024,t=1,p=1$???$a2V5a2V5",
		"bad key":           "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$???",
		"bcrypt hash":       "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
	for name, hash := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.Verify("pw", hash)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("123456")
	require.NoError(t, err)
	assert.NotContains(t, hash, "123456")

	ok, err := h.Verify("123456", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("000000", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Verify("123456", "not-a-hash")
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestHashers_SatisfyInterface(t *testing.T) {
	var _ Hasher = NewArgon2Hasher(DefaultArgon2Params)
	var _ Hasher = NewBcryptHasher(bcrypt.DefaultCost)
}

func TestBcryptHasher_InputLimit(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.Equal(t, BcryptMaxInputLen, h.MaxInputLen())

	_, err := h.Hash(strings.Repeat("9", BcryptMaxInputLen))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("9", BcryptMaxInputLen+1))
	require.Error(t, err)
}

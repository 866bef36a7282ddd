package cryptox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBits = 1024

var (
	pairOnce         sync.Once
	testPub, testPri string
)

func testPair(t *testing.T) (string, string) {
	t.Helper()
	pairOnce.Do(func() {
		var err error
		testPub, testPri, err = NewRSAEngine(testBits).GenerateKeyPair()
		require.NoError(t, err)
	})
	return testPub, testPri
}

func TestGenerateKeyPair_Encoding(t *testing.T) {
	pub, priv := testPair(t)

	pk, err := ParsePublicKey(pub)
	require.NoError(t, err)
	assert.Equal(t, testBits, pk.N.BitLen())

	sk, err := ParsePrivateKey(priv)
	require.NoError(t, err)
	assert.True(t, sk.PublicKey.Equal(pk), "private key must match public key")
}

func TestGenerateKeyPair_Fresh(t *testing.T) {
	e := NewRSAEngine(testBits)
	p1, _, err := e.GenerateKeyPair()
	require.NoError(t, err)
	p2, _, err := e.GenerateKeyPair()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestNewRSAEngine_DefaultBits(t *testing.T) {
	assert.Equal(t, DefaultKeyBits, NewRSAEngine(0).bits)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	pub, priv := testPair(t)
	e := NewRSAEngine(testBits)

	for _, plain := range []string{"admin", "p@ssw0rd!", "닉네임", ""} {
		ct, err := e.Encrypt(plain, pub)
		require.NoError(t, err)

		got, err := e.Decrypt(ct, priv)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	pub, _ := testPair(t)
	_, otherPriv, err := NewRSAEngine(testBits).GenerateKeyPair()
	require.NoError(t, err)

	ct, err := Encrypt("secret", pub)
	require.NoError(t, err)

	_, err = Decrypt(ct, otherPriv)
	assert.ErrorIs(t, err, common.ErrCrypto)
}

func TestMalformedInput(t *testing.T) {
	pub, priv := testPair(t)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	require.NoError(t, err)
	ecPub := base64.StdEncoding.EncodeToString(ecDER)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"public key not base64", func() error { _, err := Encrypt("x", "%%%"); return err }},
		{"public key not DER", func() error { _, err := Encrypt("x", base64.StdEncoding.EncodeToString([]byte("nope"))); return err }},
		{"public key not RSA", func() error { _, err := Encrypt("x", ecPub); return err }},
		{"private key not base64", func() error { _, err := Decrypt("AAAA", "%%%"); return err }},
		{"private key is public", func() error { _, err := Decrypt("AAAA", pub); return err }},
		{"ciphertext not base64", func() error { _, err := Decrypt("%%%", priv); return err }},
		{"ciphertext garbage", func() error {
			_, err := Decrypt(base64.StdEncoding.EncodeToString([]byte("garbage")), priv)
			return err
		}},
		{"plaintext too long", func() error {
			_, err := Encrypt(string(make([]byte, 512)), pub)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), common.ErrCrypto)
		})
	}
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Wipe(nil)
}

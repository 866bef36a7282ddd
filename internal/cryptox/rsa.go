// Package cryptox implements the asymmetric key exchange primitives used to
// shield credentials in transit, plus password hashing.
//
// Keys travel as base64 of their standard DER encodings: PKIX for public
// keys and PKCS#8 for private keys. Ciphertexts are base64 of RSA PKCS#1 v1.5
// blocks, which is what browser-side RSA libraries produce.
package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// DefaultKeyBits is the RSA modulus size used when none is configured.
const DefaultKeyBits = 2048

// RSAEngine generates key pairs and encrypts/decrypts short strings.
// It is stateless and safe for concurrent use.
type RSAEngine struct {
	bits int
}

func NewRSAEngine(bits int) *RSAEngine {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	return &RSAEngine{bits: bits}
}

// GenerateKeyPair returns a fresh pair encoded for transport.
func (e *RSAEngine) GenerateKeyPair() (publicKey, privateKey string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, e.bits)
	if err != nil {
		return "", "", fmt.Errorf("%w: generate key: %v", common.ErrCrypto, err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: marshal public key: %v", common.ErrCrypto, err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("%w: marshal private key: %v", common.ErrCrypto, err)
	}

	return base64.StdEncoding.EncodeToString(pubDER), base64.StdEncoding.EncodeToString(privDER), nil
}

// Encrypt encrypts plain with the encoded public key.
func (e *RSAEngine) Encrypt(plain, publicKey string) (string, error) {
	return Encrypt(plain, publicKey)
}

// Decrypt reverses Encrypt with the encoded private key.
func (e *RSAEngine) Decrypt(ciphertext, privateKey string) (string, error) {
	return Decrypt(ciphertext, privateKey)
}

// Encrypt is available without an engine so clients can use it directly.
func Encrypt(plain, publicKey string) (string, error) {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return "", err
	}

	out, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plain))
	if err != nil {
		return "", fmt.Errorf("%w: encrypt: %v", common.ErrCrypto, err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func Decrypt(ciphertext, privateKey string) (string, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", common.ErrCrypto, err)
	}

	plain, err := rsa.DecryptPKCS1v15(rand.Reader, priv, raw)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt: %v", common.ErrCrypto, err)
	}
	defer Wipe(plain)

	return string(plain), nil
}

// ParsePublicKey decodes a base64 PKIX RSA public key.
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode public key: %v", common.ErrCrypto, err)
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %v", common.ErrCrypto, err)
	}

	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, not RSA", common.ErrCrypto, key)
	}
	return pub, nil
}

// ParsePrivateKey decodes a base64 PKCS#8 RSA private key.
func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode private key: %v", common.ErrCrypto, err)
	}
	defer Wipe(der)

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", common.ErrCrypto, err)
	}

	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is %T, not RSA", common.ErrCrypto, key)
	}
	return priv, nil
}

// Wipe overwrites b with zeros. Safe on nil.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

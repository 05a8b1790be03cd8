package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
)

// Sign produces the base64 signature of data under PKCS1v15/SHA-256, the
// scheme required by spec.md §6. Used by client-side tooling (cmd/auditctl)
// and by tests that need to construct valid audits.
func Sign(data []byte, priv *rsa.PrivateKey) (string, error) {
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks an RSA-PKCS1v15/SHA-256 signature over data using a
// PEM-encoded public key. It fails closed on any decode, parse, or
// cryptographic error and has no side effects (spec.md §4.2).
func Verify(data []byte, signatureBase64 string, publicKeyPEM string) bool {
	sig, err := base64.StdEncoding.DecodeString(signatureBase64)
	if err != nil {
		return false
	}

	pub, err := DecodePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
}

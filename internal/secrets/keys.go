package secrets

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"golang.org/x/crypto/ssh"
)

const (
	// KeyBits is the modulus size of generated key pairs.
	KeyBits = 2048

	// MinKeyBits is the smallest RSA modulus accepted when parsing keys.
	MinKeyBits = 2048
)

// KeyWrapper encrypts a symmetric key so only the matching KeyUnwrapper can recover it.
type KeyWrapper interface {
	WrapKey(key []byte) ([]byte, error)
}

// KeyUnwrapper recovers a symmetric key produced by the matching KeyWrapper.
type KeyUnwrapper interface {
	UnwrapKey(wrapped []byte) ([]byte, error)
}

// KeyPair holds both halves of a generated key pair in their textual encodings.
type KeyPair struct {
	// PrivateKey is the base64 encoding of the PKCS#1 DER private key. Keep it secret.
	PrivateKey string

	// PublicKey is the PEM encoded SubjectPublicKeyInfo. It can be shared freely.
	PublicKey string
}

// PublicKey wraps symmetric keys with RSA-OAEP (SHA-256).
type PublicKey struct {
	key *rsa.PublicKey
}

// PrivateKey unwraps symmetric keys with RSA-OAEP (SHA-256).
type PrivateKey struct {
	key *rsa.PrivateKey
}

// WrapKey encrypts key under the public key. SHA-256 is both the OAEP hash and the MGF1 hash.
func (p *PublicKey) WrapKey(key []byte) ([]byte, error) {
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, p.key, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap symmetric key: %w", err)
	}
	return wrapped, nil
}

// Size returns the modulus size in bits.
func (p *PublicKey) Size() int {
	return p.key.N.BitLen()
}

// UnwrapKey decrypts a wrapped symmetric key.
// The returned error never says why unwrapping failed.
func (p *PrivateKey) UnwrapKey(wrapped []byte) ([]byte, error) {
	key, err := rsa.DecryptOAEP(sha256.New(), nil, p.key, wrapped, nil)
	if err != nil {
		return nil, kerrors.ErrDecryptFailed
	}
	return key, nil
}

// Public returns the public half of the key.
func (p *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: &p.key.PublicKey}
}

// GenerateKeyPair creates a new RSA key pair with exponent 65537.
func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyGeneration, err)
	}

	publicPEM, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyGeneration, err)
	}

	return &KeyPair{
		PrivateKey: base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(privateKey)),
		PublicKey:  publicPEM,
	}, nil
}

func encodePublicKey(pub *rsa.PublicKey) (string, error) {
	pubASN1, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubASN1,
	})), nil
}

// ParsePublicKey parses a PEM encoded RSA public key.
// Both SubjectPublicKeyInfo ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") blocks are accepted.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	block, _ := pem.Decode(bytes.TrimSpace(data))
	if block == nil {
		return nil, fmt.Errorf("%w: failed to decode PEM block containing public key", kerrors.ErrInvalidKeyFormat)
	}

	var pub *rsa.PublicKey
	switch block.Type {
	case "PUBLIC KEY":
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKeyFormat, err)
		}
		rsaPub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidKeyFormat)
		}
		pub = rsaPub
	case "RSA PUBLIC KEY":
		parsed, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKeyFormat, err)
		}
		pub = parsed
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block type %q", kerrors.ErrInvalidKeyFormat, block.Type)
	}

	if pub.N.BitLen() < MinKeyBits {
		return nil, fmt.Errorf("%w: RSA key is %d bits, need at least %d", kerrors.ErrInvalidKeyFormat, pub.N.BitLen(), MinKeyBits)
	}

	return &PublicKey{key: pub}, nil
}

// ParsePrivateKey parses a private key produced by GenerateKeyPair.
//
// The canonical input is base64 encoded DER in PKCS#1 or PKCS#8 form.
// A PEM wrapped RSA key is accepted as well. Surrounding whitespace is ignored.
func ParsePrivateKey(encoded string) (*PrivateKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty private key", kerrors.ErrInvalidKeyFormat)
	}

	var der []byte
	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil {
			return nil, fmt.Errorf("%w: failed to decode PEM block containing private key", kerrors.ErrInvalidKeyFormat)
		}
		der = block.Bytes
	} else {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: private key is not valid base64: %v", kerrors.ErrInvalidKeyFormat, err)
		}
		der = decoded
	}

	key, err := parsePrivateKeyDER(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKeyFormat, err)
	}

	if key.N.BitLen() < MinKeyBits {
		return nil, fmt.Errorf("%w: RSA key is %d bits, need at least %d", kerrors.ErrInvalidKeyFormat, key.N.BitLen(), MinKeyBits)
	}

	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKeyFormat, err)
	}

	return &PrivateKey{key: key}, nil
}

func parsePrivateKeyDER(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key DER")
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}

	return key, nil
}

// Fingerprint returns the OpenSSH style SHA256 fingerprint of a public key.
func Fingerprint(pub *PublicKey) (string, error) {
	sshKey, err := ssh.NewPublicKey(pub.key)
	if err != nil {
		return "", fmt.Errorf("failed to convert public key: %w", err)
	}
	return ssh.FingerprintSHA256(sshKey), nil
}

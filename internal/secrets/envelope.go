package secrets

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

// Envelope is one hybrid-encrypted message.
type Envelope struct {
	// WrappedKey is the symmetric key encrypted under the recipient's public key.
	WrappedKey []byte

	// IV is the 12-byte AES-GCM nonce.
	IV []byte

	// Tag is the 16-byte AES-GCM authentication tag.
	Tag []byte

	// Ciphertext has the same length as the plaintext.
	Ciphertext []byte
}

// wireEnvelope is the canonical JSON form.
type wireEnvelope struct {
	Key  string `json:"key"`
	IV   string `json:"iv"`
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

// Encrypt seals plaintext under a fresh symmetric key and nonce, then wraps the key with w.
func Encrypt(plaintext string, w KeyWrapper) (*Envelope, error) {
	if !utf8.ValidString(plaintext) {
		return nil, kerrors.ErrInvalidEncoding
	}

	symKey, err := CreateSymmetricKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}
	defer zero(symKey)

	nonce, err := createNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext, tag, err := seal(symKey, nonce, []byte(plaintext))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt plaintext: %w", err)
	}

	wrappedKey, err := w.WrapKey(symKey)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		WrappedKey: wrappedKey,
		IV:         nonce,
		Tag:        tag,
		Ciphertext: ciphertext,
	}, nil
}

// Decrypt unwraps the symmetric key with u and verifies and decrypts the ciphertext.
//
// Any failure to unwrap or authenticate returns ErrDecryptFailed, so callers
// cannot distinguish a wrong key from tampered data.
func Decrypt(env *Envelope, u KeyUnwrapper) (string, error) {
	if env == nil {
		return "", fmt.Errorf("%w: nil envelope", kerrors.ErrMalformedEnvelope)
	}
	if err := env.validate(); err != nil {
		return "", err
	}

	symKey, err := u.UnwrapKey(env.WrappedKey)
	if err != nil {
		return "", kerrors.ErrDecryptFailed
	}
	defer zero(symKey)

	if len(symKey) != SymmetricKeySize {
		return "", kerrors.ErrDecryptFailed
	}

	plaintext, err := open(symKey, env.IV, env.Ciphertext, env.Tag)
	if err != nil {
		return "", kerrors.ErrDecryptFailed
	}
	defer zero(plaintext)

	if !utf8.Valid(plaintext) {
		return "", kerrors.ErrInvalidEncoding
	}

	return string(plaintext), nil
}

// DecryptBytes parses a serialized envelope and decrypts it.
func DecryptBytes(data []byte, u KeyUnwrapper) (string, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return "", err
	}
	return Decrypt(env, u)
}

// ParseEnvelope parses the canonical JSON form and checks the field length invariants.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if errors.Is(err, kerrors.ErrMalformedEnvelope) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrMalformedEnvelope, err)
	}
	return &env, nil
}

// Marshal returns the canonical JSON form of the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// MarshalJSON encodes every field as standard base64 under the keys key, iv, tag and data.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	key := base64.StdEncoding.EncodeToString(e.WrappedKey)
	iv := base64.StdEncoding.EncodeToString(e.IV)
	tag := base64.StdEncoding.EncodeToString(e.Tag)
	data := base64.StdEncoding.EncodeToString(e.Ciphertext)

	return json.Marshal(wireEnvelope{Key: key, IV: iv, Tag: tag, Data: data})
}

// UnmarshalJSON decodes the canonical JSON form. All four fields are required
// and field names are matched exactly.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrMalformedEnvelope, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: expected a JSON object", kerrors.ErrMalformedEnvelope)
	}

	fields := []struct {
		name string
		dest *[]byte
	}{
		{"key", &e.WrappedKey},
		{"iv", &e.IV},
		{"tag", &e.Tag},
		{"data", &e.Ciphertext},
	}

	for _, f := range fields {
		value, ok := raw[f.name]
		if !ok {
			return fmt.Errorf("%w: missing field %q", kerrors.ErrMalformedEnvelope, f.name)
		}
		var encoded string
		if string(value) == "null" || json.Unmarshal(value, &encoded) != nil {
			return fmt.Errorf("%w: field %q must be a string", kerrors.ErrMalformedEnvelope, f.name)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("%w: field %q is not valid base64", kerrors.ErrMalformedEnvelope, f.name)
		}
		*f.dest = decoded
	}

	return e.validate()
}

func (e *Envelope) validate() error {
	if len(e.WrappedKey) == 0 {
		return fmt.Errorf("%w: empty wrapped key", kerrors.ErrMalformedEnvelope)
	}
	if len(e.IV) != NonceSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", kerrors.ErrMalformedEnvelope, NonceSize, len(e.IV))
	}
	if len(e.Tag) != TagSize {
		return fmt.Errorf("%w: tag must be %d bytes, got %d", kerrors.ErrMalformedEnvelope, TagSize, len(e.Tag))
	}
	return nil
}

// Package secrets provides the cryptographic core of buildenv.
//
// This package handles key pair generation and parsing, and the hybrid
// envelope that protects a configuration file. It performs no I/O: callers
// hand it bytes and persist whatever it returns.
//
// # Encryption Architecture
//
// buildenv uses a hybrid encryption scheme:
//
//  1. A random 256-bit symmetric key and a random 96-bit nonce are drawn per call
//  2. The plaintext is sealed with AES-256-GCM, producing ciphertext and a 128-bit tag
//  3. The symmetric key is wrapped with the recipient's RSA public key (OAEP, SHA-256)
//
// The result is an Envelope, serialized as a JSON object:
//
//	{"key": "<wrapped key>", "iv": "<nonce>", "tag": "<tag>", "data": "<ciphertext>"}
//
// Every value is standard base64. Encrypting the same plaintext twice never
// produces the same envelope.
//
// # Key Handles
//
// Keys are exposed only through two capabilities: KeyWrapper (implemented by
// *PublicKey) and KeyUnwrapper (implemented by *PrivateKey). Encrypt and
// Decrypt accept these interfaces, not library key types.
//
// # Key Encodings
//
//   - Private keys: base64 of the PKCS#1 DER encoding (PKCS#8 is accepted on input)
//   - Public keys: PEM encoded SubjectPublicKeyInfo
//
// RSA keys are 2048 bits. Smaller keys are rejected when parsed.
//
// # Failure Semantics
//
// Decrypt verifies the whole ciphertext before releasing any byte. A wrong
// key, a corrupted wrapped key and a tampered ciphertext or tag all produce
// the same ErrDecryptFailed. Symmetric keys and intermediate plaintext are
// zeroed before returning.
package secrets

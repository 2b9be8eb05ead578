package playstore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
)

// DefaultPublicKey is the login public key blob shipped with the store
// client: a length-prefixed modulus followed by a length-prefixed
// exponent, base64 encoded.
const DefaultPublicKey = "AAAAgMom/1a/v0lblO2Ubrt60J2gcuXSljGFQXgcyZWveWLEwo6prwgi3iJIZdodyhKZQrNWp5nKJ3srRXcUW+F1BD3baEVGcmEgqaLZUNBjm057pKRI16kB0YppeGx5qIQ5QjKzsR8ETQbKLNWgRY0QRNVz34kMJR3P/LgHax/6rmf5AAAAAwEAAQ=="

const credentialFormatMarker = 0x00

// DecodePublicKey base64-decodes a public key blob.
func DecodePublicKey(encoded string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("public key is not base64: %v", err)}
	}
	return blob, nil
}

// ParsePublicKey decomposes a key blob into an RSA public key. The blob
// holds a big-endian uint32 length, the modulus, another length, then
// the exponent.
func ParsePublicKey(blob []byte) (*rsa.PublicKey, error) {
	modulus, rest, err := readLengthPrefixed(blob)
	if err != nil {
		return nil, &ProtocolError{Reason: "public key modulus: " + err.Error()}
	}
	exponent, _, err := readLengthPrefixed(rest)
	if err != nil {
		return nil, &ProtocolError{Reason: "public key exponent: " + err.Error()}
	}

	e := new(big.Int).SetBytes(exponent)
	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return nil, &ProtocolError{Reason: "public key exponent out of range"}
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(e.Int64()),
	}, nil
}

func readLengthPrefixed(b []byte) (value, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("missing length field")
	}
	n := binary.BigEndian.Uint32(b)
	b = b[4:]
	if n == 0 || uint64(n) > uint64(len(b)) {
		return nil, nil, fmt.Errorf("length %d outside buffer of %d bytes", n, len(b))
	}
	return b[:n], b[n:], nil
}

// EncryptCredentials builds the EncryptedPasswd login field:
//
//	base64url( 0x00 | sha1(keyBlob)[:4] | RSA-OAEP(key, username "\x00" password) )
func EncryptCredentials(keyBlob []byte, username, password string) (string, error) {
	return encryptCredentials(rand.Reader, keyBlob, username, password)
}

func encryptCredentials(random io.Reader, keyBlob []byte, username, password string) (string, error) {
	pub, err := ParsePublicKey(keyBlob)
	if err != nil {
		return "", err
	}

	digest := sha1.Sum(keyBlob)
	plaintext := []byte(username + "\x00" + password)

	ciphertext, err := rsa.EncryptOAEP(sha1.New(), random, pub, plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	out := make([]byte, 0, 5+len(ciphertext))
	out = append(out, credentialFormatMarker)
	out = append(out, digest[:4]...)
	out = append(out, ciphertext...)

	return base64.URLEncoding.EncodeToString(out), nil
}

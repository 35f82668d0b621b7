package license

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// Hasher produces lowercase hexadecimal digests used as building blocks of
// the derivation chain. MD5 is only a mixing step here, never an integrity check.
type Hasher interface {
	SHA512(data []byte) string
	SHA256(data []byte) string
	SHA384(data []byte) string
	MD5(data []byte) string
}

// DigestHasher is the Hasher backed by the standard crypto packages
type DigestHasher struct{}

func (DigestHasher) SHA512(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

func (DigestHasher) SHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (DigestHasher) SHA384(data []byte) string {
	sum := sha512.Sum384(data)
	return hex.EncodeToString(sum[:])
}

func (DigestHasher) MD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

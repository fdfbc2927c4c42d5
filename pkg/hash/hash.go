package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type HashAlgorithm string

const (
	MD5    HashAlgorithm = "md5"
	SHA1   HashAlgorithm = "sha1"
	SHA256 HashAlgorithm = "sha256"
	SHA512 HashAlgorithm = "sha512"
)

// Hasher computes content checksums for stored roster and export files.
type Hasher interface {
	Calculate(data []byte) (string, error)
	CalculateReader(reader io.Reader) (string, error)
	Verify(data []byte, expectedHash string) (bool, error)
}

type ContentHasher struct {
	algorithm HashAlgorithm
}

func NewContentHasher(algorithm HashAlgorithm) *ContentHasher {
	return &ContentHasher{
		algorithm: algorithm,
	}
}

func (h *ContentHasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

func (h *ContentHasher) Calculate(data []byte) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *ContentHasher) CalculateReader(reader io.Reader) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *ContentHasher) Verify(data []byte, expectedHash string) (bool, error) {
	calculatedHash, err := h.Calculate(data)
	if err != nil {
		return false, err
	}

	return calculatedHash == expectedHash, nil
}

func (h *ContentHasher) getHasher() (hash.Hash, error) {
	switch h.algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h.algorithm)
	}
}

// Package naming derives the cache file names the game expects for media assets.
//
// A cache name is built from three parts:
//
//	<reversed MD5>_<category subpath><encoded base name>
//
// The reversed MD5 is the file's MD5 digest with its 16 bytes in reverse
// order, rendered as uppercase hex. This is not the same as reversing the
// 32 hex characters.
package naming

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/cachegen/internal/domain"
)

// Digests returns the MD5 of data and its byte-reversed form, both as uppercase hex.
func Digests(data []byte) (digest, reversed string) {
	sum := md5.Sum(data)
	digest = strings.ToUpper(hex.EncodeToString(sum[:]))
	reverseBytes(sum[:])
	reversed = strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest, reversed
}

// ReverseDigest reverses the byte order of a hex digest.
func ReverseDigest(hexDigest string) (string, error) {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", fmt.Errorf("invalid digest %q: %w", hexDigest, err)
	}
	reverseBytes(raw)
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// DeriveName builds the cache name for data stored under baseName.
// baseName must not contain a directory.
func DeriveName(data []byte, baseName string, category domain.Category) string {
	_, reversed := Digests(data)
	return reversed + "_" + category.Subpath() + EncodeBaseName(baseName)
}

// DeriveFile reads path and returns its cache entry for category.
func DeriveFile(path string, category domain.Category) (domain.CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("%w: %w", domain.ErrUnreadableSource, err)
	}
	return domain.CacheEntry{
		SourcePath:  path,
		DerivedName: DeriveName(data, filepath.Base(path), category),
		Category:    category,
	}, nil
}

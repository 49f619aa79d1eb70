package transforms

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"hash/fnv"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Digests are computed over the UTF-8 bytes of the text and written as
// lowercase hex.
func hashEntries() []entry {
	return []entry{
		pure("md5", "MD5 digest", hexDigest(md5.New)),
		pure("sha1", "SHA-1 digest", hexDigest(sha1.New)),
		pure("sha224", "SHA-224 digest", hexDigest(sha256.New224)),
		pure("sha256", "SHA-256 digest", hexDigest(sha256.New)),
		pure("sha384", "SHA-384 digest", hexDigest(sha512.New384)),
		pure("sha512", "SHA-512 digest", hexDigest(sha512.New)),
		pure("sha3-256", "SHA3-256 digest", hexDigest(sha3.New256)),
		pure("sha3-512", "SHA3-512 digest", hexDigest(sha3.New512)),
		pure("blake2b-256", "BLAKE2b-256 digest", hexDigest(newBlake2b256)),
		pure("blake2s-256", "BLAKE2s-256 digest", hexDigest(newBlake2s256)),
		pure("crc32", "CRC-32 (IEEE) checksum", func(s string) string {
			return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(s)))
		}),
		pure("adler32", "Adler-32 checksum", func(s string) string {
			return fmt.Sprintf("%08x", adler32.Checksum([]byte(s)))
		}),
		pure("fnv1a-64", "FNV-1a 64-bit hash", func(s string) string {
			h := fnv.New64a()
			h.Write([]byte(s))
			return fmt.Sprintf("%016x", h.Sum64())
		}),
		pure("uuid-v5", "Name-based UUID (SHA-1) in the URL namespace", func(s string) string {
			return uuid.NewSHA1(uuid.NameSpaceURL, []byte(s)).String()
		}),
	}
}

func hexDigest(newHash func() hash.Hash) func(string) string {
	return func(s string) string {
		h := newHash()
		h.Write([]byte(s))
		return hex.EncodeToString(h.Sum(nil))
	}
}

// Unkeyed BLAKE2 constructors cannot fail.
func newBlake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func newBlake2s256() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/daleavatar/internal/common"
)

// argon2id parameters for new digests.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	// digests asking for more memory than this (KiB) are rejected outright
	maxArgonMemory uint32 = 1024 * 1024
)

// legacyDigestLen is the length of a hex sha256 digest written by the
// previous password scheme.
const legacyDigestLen = sha256.Size * 2

// PasswordHasher turns passwords into storable digests and checks them.
//
// New digests are argon2id with a random per-record salt; the process-wide
// pepper is appended to the password before derivation, so a leaked table
// alone is not enough to mount a dictionary attack. Digests are encoded in
// the usual "$argon2id$v=19$m=..,t=..,p=..$salt$key" form.
//
// Legacy digests (hex sha256 of password+pepper) still verify so that
// old accounts can sign in; NeedsRehash reports them.
type PasswordHasher struct {
	pepper []byte
}

// NewPasswordHasher returns a hasher bound to the process-wide pepper.
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{pepper: []byte(pepper)}
}

// Hash derives a new digest for password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(argonSaltLen)
	key := h.derive(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches digest. An empty or unparsable
// digest never matches.
func (h *PasswordHasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}

	if isLegacyDigest(digest) {
		want := h.legacy(password)
		return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(digest))) == 1
	}

	p, err := decodeArgonDigest(digest)
	if err != nil {
		return false
	}

	got := h.derive(password, p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(got, p.key) == 1
}

// NeedsRehash reports whether digest was produced by an older scheme or
// with weaker parameters than the current ones.
func (h *PasswordHasher) NeedsRehash(digest string) bool {
	if isLegacyDigest(digest) {
		return true
	}
	p, err := decodeArgonDigest(digest)
	if err != nil {
		return true
	}
	return p.time < argonTime || p.memory < argonMemory || len(p.key) < int(argonKeyLen)
}

func (h *PasswordHasher) derive(password string, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	input := append([]byte(password), h.pepper...)
	defer common.WipeByteArray(input)
	return argon2.IDKey(input, salt, t, m, p, keyLen)
}

func (h *PasswordHasher) legacy(password string) string {
	sum := sha256.Sum256(append([]byte(password), h.pepper...))
	return hex.EncodeToString(sum[:])
}

func isLegacyDigest(digest string) bool {
	if len(digest) != legacyDigestLen {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodeArgonDigest(digest string) (*argonParams, error) {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, common.ErrorValidation
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, common.ErrorValidation
	}

	p := &argonParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, common.ErrorValidation
	}
	if p.time == 0 || p.threads == 0 || p.memory > maxArgonMemory {
		return nil, common.ErrorValidation
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, common.ErrorValidation
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, common.ErrorValidation
	}

	return p, nil
}

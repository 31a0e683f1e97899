package fingerprint

import (
	"encoding/base64"
	"fmt"

	"github.com/aretw0/postman/pkg/domain"
	"golang.org/x/crypto/blake2b"
)

// Version identifies the canonical encoding. It is mixed into every digest.
const Version byte = 2

// Size is the digest width in bytes.
const Size = 16

// Digest is an opaque 128-bit summary of a snapshot.
type Digest [Size]byte

// Empty is the digest of a nil or empty snapshot.
var Empty = mustDigest(nil)

// String returns the base64 form of the digest.
func (d Digest) String() string {
	return base64.StdEncoding.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid digest: %w", err)
	}
	if len(raw) != Size {
		return fmt.Errorf("invalid digest: want %d bytes, got %d", Size, len(raw))
	}
	copy(d[:], raw)
	return nil
}

// Of fingerprints a snapshot with the default settings.
func Of(s domain.Snapshot) (Digest, error) {
	return New().Fingerprint(s)
}

// Fingerprinter hashes snapshots. The zero value is ready to use.
type Fingerprinter struct {
	// MaxDepth bounds value nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit used when Fingerprinter.MaxDepth is zero.
const DefaultMaxDepth = 256

// New returns a Fingerprinter with default settings.
func New() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint implements ports.Fingerprinter.
func (f *Fingerprinter) Fingerprint(s domain.Snapshot) (Digest, error) {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		return Digest{}, fmt.Errorf("init blake2b: %w", err)
	}

	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	h.Write([]byte{Version})
	enc := newEncoder(h, maxDepth)
	if err := enc.snapshot(s); err != nil {
		return Digest{}, err
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

func mustDigest(s domain.Snapshot) Digest {
	d, err := Of(s)
	if err != nil {
		panic(err)
	}
	return d
}

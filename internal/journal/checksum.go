package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrChecksumMismatch is returned when stored rounds do not hash to the
// checksum saved with them.
var ErrChecksumMismatch = errors.New("journal checksum mismatch")

// Checksum is a digest of the deterministic part of a journal. Two runs of
// the same game with the same seed produce the same checksum.
type Checksum struct {
	Hash    string // SHA-256 of the canonical representation
	Rounds  int
	Version int
}

// Checksum hashes the journal. Round IDs, timestamps, the game ID and
// error text are left out because they differ between otherwise identical
// runs; errors count by kind.
func (j *Journal) Checksum() (*Checksum, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	hash := sha256.New()
	if _, err := hash.Write([]byte(canonical(j.Rounds))); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &Checksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Rounds:  len(j.Rounds),
		Version: fileVersion,
	}, nil
}

// canonical renders rounds one per line in recorded order; the order is
// part of what is being checked.
func canonical(rounds []Round) string {
	var buf bytes.Buffer
	for _, r := range rounds {
		fmt.Fprintf(&buf, "ROUND:%d|%s|%s|%d|%t|%s|%s\n",
			r.Seq,
			r.Event,
			r.Target,
			r.Depth,
			r.Consumed,
			r.ConsumedBy,
			r.ErrKind,
		)
		if len(r.Invoked) > 0 {
			fmt.Fprintf(&buf, "  INVOKED:%q\n", r.Invoked)
		}
	}
	return buf.String()
}

// VerifyChecksum reports whether the journal hashes to expected.
func (j *Journal) VerifyChecksum(expected *Checksum) (bool, error) {
	computed, err := j.Checksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

type encoded struct {
	GameID string
	Rounds []Round
}

// MarshalBinary encodes the journal's game ID and rounds with gob.
func (j *Journal) MarshalBinary() ([]byte, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(encoded{GameID: j.GameID, Rounds: j.Rounds}); err != nil {
		return nil, fmt.Errorf("failed to encode journal: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes bytes written by MarshalBinary.
func Unmarshal(data []byte) (*Journal, error) {
	var e encoded
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode journal: %w", err)
	}
	j := New(e.GameID)
	j.Rounds = append(j.Rounds, e.Rounds...)
	return j, nil
}

// ValidateRoundtrip encodes and decodes the journal and compares
// checksums.
func ValidateRoundtrip(j *Journal) error {
	original, err := j.Checksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := j.MarshalBinary()
	if err != nil {
		return err
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	ok, err := decoded.VerifyChecksum(original)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: after roundtrip", ErrChecksumMismatch)
	}
	return nil
}

package treasurydomain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/nats-io/nkeys"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Signer produces detached ed25519 signatures over transfer instructions
// using the service's nkeys seed. Downstream auditors verify against the
// published public key, so an instruction cannot be altered after issuance.
type Signer struct {
	kp nkeys.KeyPair
}

// NewSigner parses the configured seed into a signing pair.
func NewSigner(seed string) (*Signer, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing seed: %w", err)
	}
	// Seeds for curve keys cannot sign; fail at construction, not on first use.
	if _, err := kp.Sign([]byte("probe")); err != nil {
		return nil, fmt.Errorf("signing seed cannot sign: %w", err)
	}
	return &Signer{kp: kp}, nil
}

// PublicKey returns the verification key for this signer.
func (s *Signer) PublicKey() (string, error) {
	return s.kp.PublicKey()
}

// InstructionDigest is the canonical byte string a signature covers. Field
// order is fixed; changing it invalidates every previously issued signature.
// The signature field itself is excluded.
func InstructionDigest(inst treasurytypes.TransferInstruction) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s|%d|%d",
		inst.ID,
		inst.ClubID,
		inst.Destination,
		inst.Amount,
		inst.Kind,
		inst.Cycle,
		inst.IssuedAt.UTC().Unix(),
	)
	return h.Sum(nil)
}

// Sign returns the base64 signature over the instruction digest.
func (s *Signer) Sign(inst treasurytypes.TransferInstruction) (string, error) {
	sig, err := s.kp.Sign(InstructionDigest(inst))
	if err != nil {
		return "", fmt.Errorf("failed to sign instruction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks the instruction's embedded signature against its digest.
func (s *Signer) Verify(inst treasurytypes.TransferInstruction) error {
	raw, err := base64.StdEncoding.DecodeString(inst.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := s.kp.Verify(InstructionDigest(inst), raw); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

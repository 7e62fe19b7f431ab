package loyalty

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// IssuanceVoucher is the QR payload a business hands to a customer: a
// standing offer to issue tokens, bounded by an expiry. The customer
// app presents it back to run the issue-tokens workflow.
type IssuanceVoucher struct {
	BusinessParty     string `json:"businessParty"`
	ProgramContractID string `json:"programContractId"`
	Amount            int64  `json:"amount"`
	Reason            string `json:"reason"`
	Reference         string `json:"reference"`
	ExpiresAt         string `json:"expiresAt"`
}

// SignedVoucher pairs the voucher JSON with its hex ed25519 signature.
type SignedVoucher struct {
	Voucher   IssuanceVoucher `json:"voucher"`
	Signature string          `json:"signature"`
}

// VoucherSigner signs and verifies issuance vouchers. The key is
// derived from a hex seed held in service config.
type VoucherSigner struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewVoucherSigner builds a signer from a hex-encoded 32-byte seed.
func NewVoucherSigner(seedHex string) (*VoucherSigner, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode voucher seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("voucher seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &VoucherSigner{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

// Sign signs the voucher's canonical JSON encoding.
func (s *VoucherSigner) Sign(v IssuanceVoucher) (*SignedVoucher, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode voucher: %w", err)
	}
	sig := ed25519.Sign(s.priv, msg)
	return &SignedVoucher{Voucher: v, Signature: hex.EncodeToString(sig)}, nil
}

// Verify checks the signature and the expiry. An expired or forged
// voucher is rejected before any ledger call is made.
func (s *VoucherSigner) Verify(sv SignedVoucher, now time.Time) error {
	msg, err := json.Marshal(sv.Voucher)
	if err != nil {
		return fmt.Errorf("encode voucher: %w", err)
	}
	sig, err := hex.DecodeString(sv.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if !ed25519.Verify(s.pub, msg, sig) {
		return fmt.Errorf("voucher signature invalid")
	}
	expires, err := time.Parse(time.RFC3339, sv.Voucher.ExpiresAt)
	if err != nil {
		return fmt.Errorf("parse voucher expiry: %w", err)
	}
	if now.After(expires) {
		return fmt.Errorf("voucher expired at %s", sv.Voucher.ExpiresAt)
	}
	return nil
}

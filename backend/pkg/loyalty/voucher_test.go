package loyalty

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func testVoucher(expiresAt time.Time) IssuanceVoucher {
	return IssuanceVoucher{
		BusinessParty:     "business-joes",
		ProgramContractID: "#program:0",
		Amount:            25,
		Reason:            "QR scan",
		Reference:         "ref-001",
		ExpiresAt:         expiresAt.UTC().Format(time.RFC3339),
	}
}

func TestVoucherSignVerify(t *testing.T) {
	signer, err := NewVoucherSigner(testSeed)
	require.NoError(t, err)

	signed, err := signer.Sign(testVoucher(time.Now().Add(15 * time.Minute)))
	require.NoError(t, err)
	require.NotEmpty(t, signed.Signature)

	assert.NoError(t, signer.Verify(*signed, time.Now()))
}

func TestVoucherTamperedFieldRejected(t *testing.T) {
	signer, err := NewVoucherSigner(testSeed)
	require.NoError(t, err)

	signed, err := signer.Sign(testVoucher(time.Now().Add(15 * time.Minute)))
	require.NoError(t, err)

	signed.Voucher.Amount = 25000
	err = signer.Verify(*signed, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature invalid")
}

func TestVoucherTamperedSignatureRejected(t *testing.T) {
	signer, err := NewVoucherSigner(testSeed)
	require.NoError(t, err)

	signed, err := signer.Sign(testVoucher(time.Now().Add(15 * time.Minute)))
	require.NoError(t, err)

	flipped := "0"
	if strings.HasPrefix(signed.Signature, "0") {
		flipped = "1"
	}
	signed.Signature = flipped + signed.Signature[1:]
	assert.Error(t, signer.Verify(*signed, time.Now()))
}

func TestVoucherExpired(t *testing.T) {
	signer, err := NewVoucherSigner(testSeed)
	require.NoError(t, err)

	signed, err := signer.Sign(testVoucher(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	err = signer.Verify(*signed, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestVoucherSignedByDifferentKeyRejected(t *testing.T) {
	signer, err := NewVoucherSigner(testSeed)
	require.NoError(t, err)
	other, err := NewVoucherSigner(strings.Repeat("ab", 32))
	require.NoError(t, err)

	signed, err := other.Sign(testVoucher(time.Now().Add(15 * time.Minute)))
	require.NoError(t, err)

	assert.Error(t, signer.Verify(*signed, time.Now()))
}

func TestNewVoucherSignerBadSeed(t *testing.T) {
	_, err := NewVoucherSigner("not-hex")
	assert.Error(t, err)

	_, err = NewVoucherSigner("abcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nftlend/identity"
)

func id(b byte) identity.ID {
	var out identity.ID
	for i := range out {
		out[i] = b
	}
	return out
}

func TestEscrowRecordRoundTrip(t *testing.T) {
	rec := NewEscrowRecord(id(1), id(2))
	rec.Lender = id(3)
	rec.LoanAmount = 500_000
	rec.LoanOffered = true

	encoded := rec.Encode()
	require.Len(t, encoded, EscrowRecordSize)

	decoded, err := DecodeEscrowRecord(encoded)
	require.NoError(t, err)
	require.Equal(t, rec, decoded)
}

func TestEscrowRecordDecodeToleratesTrailingBytes(t *testing.T) {
	rec := NewEscrowRecord(id(1), id(2))
	encoded := append(rec.Encode(), 0xFF, 0xFF, 0xFF)

	decoded, err := DecodeEscrowRecord(encoded)
	require.NoError(t, err)
	require.Equal(t, rec, decoded)
}

func TestEscrowRecordStateTransitions(t *testing.T) {
	var nilRec *EscrowRecord
	require.Equal(t, StateEmpty, nilRec.State())

	rec := NewEscrowRecord(id(1), id(2))
	require.Equal(t, StateHeld, rec.State())

	rec.LoanOffered = true
	rec.Lender = id(9)
	rec.LoanAmount = 1
	require.Equal(t, StateOffered, rec.State())

	rec.LoanTaken = true
	rec.LoanStart = 100
	require.Equal(t, StateActive, rec.State())

	rec.Canceled = true
	require.Equal(t, StateClosed, rec.State())
}

func TestEscrowRecordValidateInvariants(t *testing.T) {
	rec := NewEscrowRecord(id(1), id(2))
	rec.LoanTaken = true
	require.Error(t, rec.Validate(), "loan_taken without loan_offered must fail validation")

	rec2 := NewEscrowRecord(id(1), id(2))
	rec2.LoanOffered = true
	require.Error(t, rec2.Validate(), "offered-not-taken with zero lender/amount must fail validation")
}

package program

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nftlend/addr"
	"nftlend/config"
	"nftlend/identity"
	"nftlend/instruction"
	"nftlend/record"
	"nftlend/runtime"
	"nftlend/runtime/memory"
)

func testID(b byte) identity.ID {
	var id identity.ID
	for i := range id {
		id[i] = b
	}
	return id
}

func encodeU64Instruction(tag instruction.Tag, value uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = byte(tag)
	binary.LittleEndian.PutUint64(buf[1:], value)
	return buf
}

func TestDispatchCreateWhitelistThenDeposit(t *testing.T) {
	programID := testID(0x01)
	admin := config.AdminID
	borrower := testID(0x02)
	mint := testID(0x04)
	creator := testID(0x10)
	escrowAccount := testID(0x20)

	store := memory.New(time.Unix(1_700_000_000, 0))
	store.PutAccount(runtime.AccountMeta{Key: admin, Owner: admin, Balance: 1_000_000})
	store.PutAccount(runtime.AccountMeta{Key: borrower, Owner: borrower, Balance: 1_000_000})
	store.Fund(admin, 1_000_000)
	store.Fund(borrower, 1_000_000)
	store.SetMetadata(mint, []identity.ID{creator})

	whitelistAcct, err := addr.WhitelistAddress(programID, creator)
	require.NoError(t, err)
	vault, err := addr.VaultAddress(programID, borrower, escrowAccount)
	require.NoError(t, err)
	vaultTA, err := addr.AssociatedTokenAddress(vault.Address, mint)
	require.NoError(t, err)
	borrowerTA, err := addr.AssociatedTokenAddress(borrower, mint)
	require.NoError(t, err)
	metadataAcct, err := addr.MetadataAddress(mint)
	require.NoError(t, err)
	store.SeedTokenAccount(borrowerTA.Address, borrower, mint, 1)
	store.PutAccount(runtime.AccountMeta{Key: vault.Address, Owner: vault.Address})

	p := New(programID, store, nil, config.DefaultRiskParameters, nil)

	createData := encodeU64Instruction(instruction.TagCreateWhitelist, 1)
	createAccounts := []runtime.AccountMeta{
		{Key: admin, Signer: true},
		{Key: whitelistAcct.Address},
		{Key: creator},
	}
	result, err := p.Dispatch(createData, createAccounts)
	require.NoError(t, err)
	require.Equal(t, "CreateWhitelist", result.Instruction)
	require.Equal(t, record.EventTypeWhitelistCreated, result.Event.Type)

	whitelistMeta, ok := store.Account(whitelistAcct.Address)
	require.True(t, ok)

	depositData := []byte{byte(instruction.TagDeposit)}
	depositAccounts := []runtime.AccountMeta{
		{Key: borrower, Signer: true},
		{Key: mint},
		{Key: borrowerTA.Address},
		{Key: escrowAccount},
		{Key: vault.Address},
		{Key: vaultTA.Address},
		{Key: metadataAcct.Address},
		whitelistMeta,
	}
	result, err = p.Dispatch(depositData, depositAccounts)
	require.NoError(t, err)
	require.Equal(t, "Deposit", result.Instruction)
	require.Equal(t, record.EventTypeDeposit, result.Event.Type)
}

func TestDispatchRejectsMalformedInstruction(t *testing.T) {
	p := New(testID(0x01), memory.New(time.Unix(0, 0)), nil, config.DefaultRiskParameters, nil)
	_, err := p.Dispatch(nil, nil)
	require.Error(t, err)
}

func TestDispatchRejectsTooFewAccounts(t *testing.T) {
	p := New(testID(0x01), memory.New(time.Unix(0, 0)), nil, config.DefaultRiskParameters, nil)
	_, err := p.Dispatch([]byte{byte(instruction.TagAcceptOffer)}, nil)
	require.Error(t, err)
}

package loan

import (
	"nftlend/addr"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/record"
	"nftlend/runtime"
)

// DepositAccounts names the accounts spec.md §4.4.1 consults. The ambient
// runtime accounts (spl_token_program, associated_token_program,
// rent_sysvar, system_program) are invoked through runtime.Ledger rather
// than threaded through as explicit accounts, per spec.md §1's framing of
// those primitives as out-of-scope named interfaces.
type DepositAccounts struct {
	Borrower                runtime.AccountMeta
	NFTMint                 identity.ID
	BorrowerNFTTokenAccount identity.ID
	EscrowAccount           identity.ID
	Vault                   identity.ID
	VaultNFTTokenAccount    identity.ID
	NFTMetadataAccount      identity.ID
	Whitelist               runtime.AccountMeta
}

// Deposit moves an escrow record from Empty to Held (spec.md §4.4.1).
func (e *Engine) Deposit(a DepositAccounts) (*record.EscrowRecord, *record.Event, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, nil, err
	}

	if !a.Borrower.Signer {
		err := coreerrors.New(coreerrors.KindUnauthorized, "deposit: borrower must sign")
		e.log("deposit", err)
		return nil, nil, err
	}

	wantBorrowerTA, err := addr.AssociatedTokenAddress(a.Borrower.Key, a.NFTMint)
	if err != nil {
		return nil, nil, err
	}
	if !wantBorrowerTA.Address.Equal(a.BorrowerNFTTokenAccount) {
		err := coreerrors.New(coreerrors.KindAddressMismatch, "deposit: borrower token account is not the canonical associated token account")
		e.log("deposit", err)
		return nil, nil, err
	}

	wantVault, err := addr.VaultAddress(e.programID, a.Borrower.Key, a.EscrowAccount)
	if err != nil {
		return nil, nil, err
	}
	if !wantVault.Address.Equal(a.Vault) {
		err := coreerrors.New(coreerrors.KindAddressMismatch, "deposit: vault account does not match derivation")
		e.log("deposit", err)
		return nil, nil, err
	}

	wantVaultTA, err := addr.AssociatedTokenAddress(a.Vault, a.NFTMint)
	if err != nil {
		return nil, nil, err
	}
	if !wantVaultTA.Address.Equal(a.VaultNFTTokenAccount) {
		err := coreerrors.New(coreerrors.KindAddressMismatch, "deposit: vault token account is not the canonical associated token account")
		e.log("deposit", err)
		return nil, nil, err
	}

	wantMetadata, err := addr.MetadataAddress(a.NFTMint)
	if err != nil {
		return nil, nil, err
	}
	if !wantMetadata.Address.Equal(a.NFTMetadataAccount) {
		err := coreerrors.New(coreerrors.KindAddressMismatch, "deposit: metadata account does not match derivation")
		e.log("deposit", err)
		return nil, nil, err
	}
	creators, err := e.ledger.MetadataCreators(a.NFTMint)
	if err != nil {
		return nil, nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "deposit: failed to decode collection metadata", err)
	}
	if len(creators) == 0 {
		err := coreerrors.New(coreerrors.KindStateInvalid, "deposit: collection metadata declares no creators")
		e.log("deposit", err)
		return nil, nil, err
	}

	if !a.Whitelist.Owner.Equal(e.programID) {
		err := coreerrors.New(coreerrors.KindUnauthorized, "deposit: whitelist account not owned by program")
		e.log("deposit", err)
		return nil, nil, err
	}
	wantWhitelist, err := addr.WhitelistAddress(e.programID, creators[0])
	if err != nil {
		return nil, nil, err
	}
	if !wantWhitelist.Address.Equal(a.Whitelist.Key) {
		err := coreerrors.New(coreerrors.KindAddressMismatch, "deposit: whitelist account does not match derivation")
		e.log("deposit", err)
		return nil, nil, err
	}
	whitelistRec, err := record.DecodeWhitelistRecord(a.Whitelist.Data)
	if err != nil {
		return nil, nil, coreerrors.Wrap(coreerrors.KindStateInvalid, "deposit: failed to decode whitelist record", err)
	}
	if !whitelistRec.State {
		err := coreerrors.New(coreerrors.KindStateInvalid, "deposit: collection whitelist is not active")
		e.log("deposit", err)
		return nil, nil, err
	}
	if !whitelistRec.MatchesCreators(creators) {
		err := coreerrors.New(coreerrors.KindStateInvalid, "deposit: collection creators do not match whitelist producer sequence")
		e.log("deposit", err)
		return nil, nil, err
	}

	if err := e.ledger.Allocate(a.Borrower.Key, a.EscrowAccount, e.programID, record.EscrowRecordSize); err != nil {
		e.log("deposit", err)
		return nil, nil, err
	}
	if err := e.ledger.EnsureTokenAccount(a.VaultNFTTokenAccount, a.Vault, a.NFTMint); err != nil {
		return nil, nil, err
	}
	if err := e.ledger.TransferToken(a.NFTMint, a.BorrowerNFTTokenAccount, a.VaultNFTTokenAccount, a.Borrower.Key, 1); err != nil {
		e.log("deposit", err)
		return nil, nil, err
	}

	rec := record.NewEscrowRecord(a.NFTMint, a.Borrower.Key)
	e.persistEscrow(a.EscrowAccount, rec)
	e.log("deposit", nil, "escrow", a.EscrowAccount.String())
	return rec, record.NewDepositEvent(rec), nil
}

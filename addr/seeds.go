package addr

import (
	"nftlend/config"
	"nftlend/identity"
)

// VaultAddress derives the per-loan vault address that custodies the
// escrowed NFT and the lender's committed principal (spec.md §3.3):
// seeds = ["nftvault", borrower_id, escrow_account_id].
func VaultAddress(programID, borrower, escrowAccount identity.ID) (Derived, error) {
	return Derive(programID, config.NFTVaultSeedTag, borrower.Bytes(), escrowAccount.Bytes())
}

// WhitelistAddress derives the per-collection whitelist record address
// (spec.md §3.3): seeds = ["whitelist", first_creator_id].
func WhitelistAddress(programID, firstCreator identity.ID) (Derived, error) {
	return Derive(programID, config.WhitelistSeedTag, firstCreator.Bytes())
}

// MetadataAddress derives the external metadata program's account for a
// given NFT mint (spec.md §6.4): seeds = ["metadata", metadata_program_id,
// nft_mint].
func MetadataAddress(mint identity.ID) (Derived, error) {
	return Derive(config.MetadataProgramID, config.MetadataSeedTag, config.MetadataProgramID.Bytes(), mint.Bytes())
}

// associatedTokenMarker domain-separates associated-token-account
// derivation from other seed-tuple derivations performed against the same
// holder/mint pair.
var associatedTokenMarker = []byte("associated-token-account")

// AssociatedTokenAddress derives the canonical token-holding account for the
// pair (holder, mint) (spec.md §3.4, §6.4 "associated token account"). The
// associated-token program is treated as a fixed system-level derivation
// authority distinct from THE CORE's own program identity, matching the
// account model's convention of a single canonical ATA per (holder, mint).
func AssociatedTokenAddress(holder, mint identity.ID) (Derived, error) {
	return Derive(identity.ID{}, associatedTokenMarker, holder.Bytes(), mint.Bytes())
}

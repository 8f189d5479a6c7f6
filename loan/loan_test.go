package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nftlend/addr"
	"nftlend/config"
	coreerrors "nftlend/core/errors"
	"nftlend/identity"
	"nftlend/oracle"
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

// fixture wires a loan Engine against a fresh memory.Store with a
// single whitelisted collection, a funded borrower holding its NFT, a
// funded lender, and a static oracle pricing the collection's floor at
// 1_000_000 (so LTVDenominator halves it to a 500_000 principal), ready to
// walk through Deposit -> Offer -> AcceptOffer.
type fixture struct {
	eng           *Engine
	store         *memory.Store
	program       identity.ID
	borrower      identity.ID
	lender        identity.ID
	mint          identity.ID
	creators      []identity.ID
	escrowAccount identity.ID
	vault         addr.Derived
	vaultTA       addr.Derived
	borrowerTA    addr.Derived
	metadataAcct  addr.Derived
	whitelistAcct addr.Derived
}

const floorPrice = 1_000_000
const principal = floorPrice / config.LTVDenominator

func newFixture(t *testing.T) *fixture {
	t.Helper()
	program := testID(0x01)
	borrower := testID(0x02)
	lender := testID(0x03)
	mint := testID(0x04)
	creators := []identity.ID{testID(0x10)}
	escrowAccount := testID(0x20)

	store := memory.New(time.Unix(1_700_000_000, 0))
	store.Fund(borrower, 10_000_000)
	store.Fund(lender, 1_000_000)
	store.PutAccount(runtime.AccountMeta{Key: borrower, Owner: borrower, Balance: 10_000_000})
	store.PutAccount(runtime.AccountMeta{Key: lender, Owner: lender, Balance: 1_000_000})
	store.SetMetadata(mint, creators)

	vault, err := addr.VaultAddress(program, borrower, escrowAccount)
	require.NoError(t, err)
	vaultTA, err := addr.AssociatedTokenAddress(vault.Address, mint)
	require.NoError(t, err)
	borrowerTA, err := addr.AssociatedTokenAddress(borrower, mint)
	require.NoError(t, err)
	metadataAcct, err := addr.MetadataAddress(mint)
	require.NoError(t, err)
	whitelistAcct, err := addr.WhitelistAddress(program, creators[0])
	require.NoError(t, err)

	store.SeedTokenAccount(borrowerTA.Address, borrower, mint, 1)
	store.PutAccount(runtime.AccountMeta{Key: vault.Address, Owner: vault.Address})
	store.Fund(vault.Address, 0)

	rec, err := record.NewWhitelistRecord(creators)
	require.NoError(t, err)
	rec.DailyInterestRate = 1
	store.PutAccount(runtime.AccountMeta{Key: whitelistAcct.Address, Owner: program, Data: rec.Encode()})

	source := oracle.NewStaticSource()
	source.SetPrice(mint, floorPrice)
	bridge := oracle.New(source)

	eng := New(program, store, bridge, config.DefaultRiskParameters, nil)

	return &fixture{
		eng: eng, store: store, program: program, borrower: borrower, lender: lender,
		mint: mint, creators: creators, escrowAccount: escrowAccount,
		vault: vault, vaultTA: vaultTA, borrowerTA: borrowerTA,
		metadataAcct: metadataAcct, whitelistAcct: whitelistAcct,
	}
}

func (f *fixture) depositAccounts() DepositAccounts {
	whitelistMeta, _ := f.store.Account(f.whitelistAcct.Address)
	return DepositAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		NFTMint:                 f.mint,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		EscrowAccount:           f.escrowAccount,
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		NFTMetadataAccount:      f.metadataAcct.Address,
		Whitelist:               whitelistMeta,
	}
}

func (f *fixture) deposit(t *testing.T) *record.EscrowRecord {
	t.Helper()
	rec, _, err := f.eng.Deposit(f.depositAccounts())
	require.NoError(t, err)
	return rec
}

func (f *fixture) offerAccounts() OfferAccounts {
	return OfferAccounts{
		Lender:        runtime.AccountMeta{Key: f.lender, Signer: true},
		EscrowAccount: f.escrowMeta(),
		Vault:         f.vault.Address,
	}
}

func (f *fixture) offer(t *testing.T) *record.EscrowRecord {
	t.Helper()
	rec, _, err := f.eng.Offer(f.offerAccounts(), principal)
	require.NoError(t, err)
	return rec
}

func (f *fixture) acceptAccounts() AcceptAccounts {
	return AcceptAccounts{
		Borrower:      runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount: f.escrowMeta(),
		Vault:         f.vault.Address,
	}
}

func (f *fixture) acceptOffer(t *testing.T) *record.EscrowRecord {
	t.Helper()
	rec, _, err := f.eng.AcceptOffer(f.acceptAccounts())
	require.NoError(t, err)
	return rec
}

func (f *fixture) escrowMeta() runtime.AccountMeta {
	acct, _ := f.store.Account(f.escrowAccount)
	return acct
}

func TestDepositHappyPath(t *testing.T) {
	f := newFixture(t)
	rec := f.deposit(t)
	require.Equal(t, record.StateHeld, rec.State())
	require.Equal(t, uint64(1), f.store.TokenBalance(f.vaultTA.Address))
}

func TestDepositRejectsNonWhitelistedCollection(t *testing.T) {
	f := newFixture(t)
	f.store.SetMetadata(f.mint, []identity.ID{testID(0x99)})
	_, _, err := f.eng.Deposit(f.depositAccounts())
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindAddressMismatch))
}

func TestOfferAndAcceptHappyPath(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	before, _ := f.store.Account(f.borrower)

	rec := f.offer(t)
	require.Equal(t, record.StateOffered, rec.State())
	require.Equal(t, uint64(principal), rec.LoanAmount)

	rec = f.acceptOffer(t)
	require.Equal(t, record.StateActive, rec.State())

	acct, _ := f.store.Account(f.borrower)
	require.Equal(t, before.Balance+principal, acct.Balance)
}

func TestOfferRejectsAmountBelowOraclePrincipal(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)

	_, _, err := f.eng.Offer(f.offerAccounts(), principal-1)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindAmountInsufficient))
}

func TestRepayHappyPath(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(2 * config.DayDuration)

	due := amountDue(principal, 1, 2)
	rec, _, err := f.eng.Repay(RepayAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	}, due, 1)
	require.NoError(t, err)
	require.Equal(t, record.StateClosed, rec.State())
	require.Equal(t, uint64(1), f.store.TokenBalance(f.borrowerTA.Address))
}

func TestRepayRejectedWhenAmountBelowDue(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(2 * config.DayDuration)

	due := amountDue(principal, 1, 2)
	_, _, err := f.eng.Repay(RepayAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	}, due-1, 1)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindAmountInsufficient))
}

func TestRepayAcceptedAtExactlyLoanTermDays(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(time.Duration(config.LoanTermDays)*config.DayDuration + 12*time.Hour)

	due := amountDue(principal, 1, config.LoanTermDays)
	rec, _, err := f.eng.Repay(RepayAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	}, due, 1)
	require.NoError(t, err)
	require.Equal(t, record.StateClosed, rec.State())
}

func TestRepayRejectedAfterTermElapsed(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(time.Duration(config.LoanTermDays+1) * config.DayDuration)

	_, _, err := f.eng.Repay(RepayAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	}, 1_000_000_000, 1)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindStateInvalid))
}

func TestClaimDefaultedHappyPath(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(time.Duration(config.LoanTermDays+1) * config.DayDuration)

	lenderTA, err := addr.AssociatedTokenAddress(f.lender, f.mint)
	require.NoError(t, err)
	f.store.PutAccount(runtime.AccountMeta{Key: f.lender, Owner: f.lender, Balance: 1_000_000})

	rec, _, err := f.eng.ClaimDefaulted(ClaimAccounts{
		Lender:                runtime.AccountMeta{Key: f.lender, Signer: true},
		EscrowAccount:         f.escrowMeta(),
		Vault:                 f.vault.Address,
		VaultNFTTokenAccount:  f.vaultTA.Address,
		LenderNFTTokenAccount: lenderTA.Address,
		NFTMint:               f.mint,
	})
	require.NoError(t, err)
	require.Equal(t, record.StateClosed, rec.State())
	require.Equal(t, uint64(1), f.store.TokenBalance(lenderTA.Address))
}

func TestClaimDefaultedRejectedBeforeTermElapsed(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	lenderTA, err := addr.AssociatedTokenAddress(f.lender, f.mint)
	require.NoError(t, err)

	_, _, err = f.eng.ClaimDefaulted(ClaimAccounts{
		Lender:                runtime.AccountMeta{Key: f.lender, Signer: true},
		EscrowAccount:         f.escrowMeta(),
		Vault:                 f.vault.Address,
		VaultNFTTokenAccount:  f.vaultTA.Address,
		LenderNFTTokenAccount: lenderTA.Address,
		NFTMint:               f.mint,
	})
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindStateInvalid))
}

func TestClaimDefaultedRejectedAtExactlyLoanTermDays(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	f.offer(t)
	f.acceptOffer(t)

	f.store.Advance(time.Duration(config.LoanTermDays)*config.DayDuration + 12*time.Hour)

	lenderTA, err := addr.AssociatedTokenAddress(f.lender, f.mint)
	require.NoError(t, err)

	_, _, err = f.eng.ClaimDefaulted(ClaimAccounts{
		Lender:                runtime.AccountMeta{Key: f.lender, Signer: true},
		EscrowAccount:         f.escrowMeta(),
		Vault:                 f.vault.Address,
		VaultNFTTokenAccount:  f.vaultTA.Address,
		LenderNFTTokenAccount: lenderTA.Address,
		NFTMint:               f.mint,
	})
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.KindStateInvalid))
}

func TestCancelBeforeOfferRefundsNothing(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)

	rec, _, err := f.eng.Cancel(CancelAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	})
	require.NoError(t, err)
	require.Equal(t, record.StateClosed, rec.State())
	require.Equal(t, uint64(1), f.store.TokenBalance(f.borrowerTA.Address))
}

func TestCancelAfterOfferRefundsBorrowerByDefault(t *testing.T) {
	f := newFixture(t)
	f.deposit(t)
	before, _ := f.store.Account(f.borrower)
	f.offer(t)

	rec, _, err := f.eng.Cancel(CancelAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	})
	require.NoError(t, err)
	require.Equal(t, record.StateClosed, rec.State())

	acct, _ := f.store.Account(f.borrower)
	require.Equal(t, before.Balance+principal, acct.Balance)
}

func TestCancelAfterOfferRefundsLenderWhenConfigured(t *testing.T) {
	f := newFixture(t)
	f.eng.params.CancelRefund = config.RefundToLender
	f.deposit(t)
	f.offer(t)

	_, _, err := f.eng.Cancel(CancelAccounts{
		Borrower:                runtime.AccountMeta{Key: f.borrower, Signer: true},
		EscrowAccount:           f.escrowMeta(),
		Vault:                   f.vault.Address,
		VaultNFTTokenAccount:    f.vaultTA.Address,
		BorrowerNFTTokenAccount: f.borrowerTA.Address,
		NFTMint:                 f.mint,
	})
	require.NoError(t, err)

	lenderAcct, _ := f.store.Account(f.lender)
	require.Equal(t, uint64(1_000_000), lenderAcct.Balance)
}

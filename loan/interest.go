package loan

// amountDue computes the repayment amount spec.md §4.4.5 Repay requires:
// principal plus simple daily interest accrued over the floored whole days
// elapsed in the loan term, D = loan_amt * (1 + daily_interest_rate * days).
// days is the caller's already-floored elapsed/DaySeconds value; a partial
// day does not accrue. dailyInterestRate is the whitelist's rate as read at
// Repay dispatch (whitelist.Engine.RateOf); the whitelist's state is not
// checked, so a deactivated collection still accrues at its last configured
// rate (spec.md §9 O-3).
func amountDue(principal, dailyInterestRate, days uint64) uint64 {
	return principal + principal*dailyInterestRate*days
}

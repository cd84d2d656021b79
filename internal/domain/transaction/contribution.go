package transaction

type Contribution struct {
	TotalDeposit      float64 `json:"totalDeposit"`
	TotalWithdraw     float64 `json:"totalWithdraw"`
	TotalPenalty      float64 `json:"totalPenalties"`
	TotalContribution float64 `json:"totalContribution"`
}

// ComputeContribution totals one member's transactions. Penalties are kept in
// their own bucket and do not reduce TotalContribution.
func ComputeContribution(transactions []Transaction) Contribution {
	var result Contribution
	for _, tx := range transactions {
		switch {
		case tx.Type == TypeDeposit:
			result.TotalDeposit += tx.Amount
		case tx.Type.IsWithdraw():
			result.TotalWithdraw += tx.Amount
		case tx.Type == TypePenalty:
			result.TotalPenalty += tx.Amount
		}
	}
	result.TotalContribution = result.TotalDeposit - result.TotalWithdraw
	return result
}

// GroupByEmail indexes transactions by MemberEmail, keeping input order inside
// each group. Transactions without an email are left out.
func GroupByEmail(transactions []Transaction) map[string][]Transaction {
	grouped := make(map[string][]Transaction)
	for _, tx := range transactions {
		if tx.MemberEmail == "" {
			continue
		}
		grouped[tx.MemberEmail] = append(grouped[tx.MemberEmail], tx)
	}
	return grouped
}

package reports

import (
	"somiti-server/internal/domain/member"
	"somiti-server/internal/domain/transaction"
)

type Statistics struct {
	TotalDeposits        float64 `json:"totalDeposits"`
	TotalWithdrawals     float64 `json:"totalWithdrawals"`
	TotalPenalties       float64 `json:"totalPenalties"`
	CurrentBalance       float64 `json:"currentBalance"`
	TotalMembers         int     `json:"totalMembers"`
	TotalAdmins          int     `json:"totalAdmins"`
	TotalTransactions    int     `json:"totalTransactions"`
	TotalDepositCount    int     `json:"totalDepositCount"`
	TotalWithdrawalCount int     `json:"totalWithdrawalCount"`
	TotalPenaltyCount    int     `json:"totalPenaltyCount"`
}

// SummarizeStatistics computes club-wide totals. CurrentBalance adds
// penalties back on top of deposits minus withdrawals, unlike a member's
// contribution which ignores them.
//
// TotalMembers counts distinct members referenced by transactions (by id,
// or by email when the id is missing). With no such references it falls
// back to the number of users with the member role.
func SummarizeStatistics(transactions []transaction.Transaction, members []member.Member) Statistics {
	var stats Statistics
	referenced := make(map[string]struct{})

	for _, tx := range transactions {
		stats.TotalTransactions++
		switch {
		case tx.Type == transaction.TypeDeposit:
			stats.TotalDeposits += tx.Amount
			stats.TotalDepositCount++
		case tx.Type.IsWithdraw():
			stats.TotalWithdrawals += tx.Amount
			stats.TotalWithdrawalCount++
		case tx.Type == transaction.TypePenalty:
			stats.TotalPenalties += tx.Amount
			stats.TotalPenaltyCount++
		}

		switch {
		case tx.MemberID != "":
			referenced["id:"+tx.MemberID] = struct{}{}
		case tx.MemberEmail != "":
			referenced["email:"+tx.MemberEmail] = struct{}{}
		}
	}
	stats.CurrentBalance = stats.TotalDeposits - stats.TotalWithdrawals + stats.TotalPenalties

	roleMembers := 0
	for _, m := range members {
		switch m.Role {
		case member.RoleAdmin:
			stats.TotalAdmins++
		case member.RoleMember:
			roleMembers++
		}
	}

	stats.TotalMembers = len(referenced)
	if stats.TotalMembers == 0 {
		stats.TotalMembers = roleMembers
	}
	return stats
}

package reports

import (
	"testing"
	"time"

	"somiti-server/internal/domain/member"
	"somiti-server/internal/domain/transaction"
)

func tx(email string, typ transaction.Type, amount float64) transaction.Transaction {
	return transaction.Transaction{MemberEmail: email, Type: typ, Amount: amount}
}

func TestLeaderboardDenseRank(t *testing.T) {
	members := []member.Member{
		{ID: "1", Email: "a@example.com", Name: "A"},
		{ID: "2", Email: "b@example.com", Name: "B"},
		{ID: "3", Email: "c@example.com", Name: "C"},
		{ID: "4", Email: "d@example.com", Name: "D"},
	}
	txs := []transaction.Transaction{
		tx("a@example.com", transaction.TypeDeposit, 100),
		tx("b@example.com", transaction.TypeDeposit, 50),
		tx("c@example.com", transaction.TypeDeposit, 120),
		tx("c@example.com", transaction.TypeWithdraw, 20),
		tx("c@example.com", transaction.TypePenalty, 40),
	}

	board := BuildLeaderboard(members, txs)
	if len(board) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(board))
	}

	wantRanks := []int{1, 1, 2, 3}
	wantTotals := []float64{100, 100, 50, 0}
	for i, entry := range board {
		if entry.Rank != wantRanks[i] || entry.TotalContribution != wantTotals[i] {
			t.Fatalf("entry %d: expected rank %d total %v, got rank %d total %v",
				i, wantRanks[i], wantTotals[i], entry.Rank, entry.TotalContribution)
		}
	}
	if board[0].Email != "a@example.com" || board[1].Email != "c@example.com" {
		t.Fatalf("expected ties in member order, got %s, %s", board[0].Email, board[1].Email)
	}
	if board[1].TotalPenalty != 40 {
		t.Fatalf("expected penalties tracked separately, got %v", board[1].TotalPenalty)
	}
}

func TestLeaderboardWithdrawalAlias(t *testing.T) {
	members := []member.Member{{ID: "1", Email: "a@example.com"}}
	txs := []transaction.Transaction{
		tx("a@example.com", transaction.TypeDeposit, 100),
		tx("a@example.com", transaction.TypeWithdrawal, 25),
	}

	board := BuildLeaderboard(members, txs)
	if board[0].TotalWithdraw != 25 || board[0].TotalContribution != 75 {
		t.Fatalf("expected alias summed into withdraw, got %+v", board[0])
	}
}

func TestStatisticsExample(t *testing.T) {
	txs := []transaction.Transaction{
		{MemberID: "m1", Type: transaction.TypeDeposit, Amount: 100},
		{MemberID: "m1", Type: transaction.TypeWithdraw, Amount: 30},
		{MemberID: "m1", Type: transaction.TypePenalty, Amount: 5},
	}
	members := []member.Member{
		{Role: member.RoleAdmin},
		{Role: member.RoleMember},
		{Role: member.RoleMember},
	}

	stats := SummarizeStatistics(txs, members)
	if stats.TotalDeposits != 100 || stats.TotalWithdrawals != 30 || stats.TotalPenalties != 5 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.CurrentBalance != 75 {
		t.Fatalf("expected currentBalance 75, got %v", stats.CurrentBalance)
	}
	if c := transaction.ComputeContribution(txs); c.TotalContribution != 70 {
		t.Fatalf("expected contribution 70, got %v", c.TotalContribution)
	}
	if stats.TotalMembers != 1 || stats.TotalAdmins != 1 {
		t.Fatalf("expected 1 referenced member and 1 admin, got %+v", stats)
	}
	if stats.TotalTransactions != 3 || stats.TotalDepositCount != 1 || stats.TotalWithdrawalCount != 1 || stats.TotalPenaltyCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
}

func TestStatisticsEmptyFallsBackToRoles(t *testing.T) {
	members := []member.Member{
		{Role: member.RoleAdmin},
		{Role: member.RoleMember},
		{Role: member.RoleMember},
		{Role: member.RoleUser},
	}

	stats := SummarizeStatistics(nil, members)
	if stats.TotalDeposits != 0 || stats.CurrentBalance != 0 || stats.TotalTransactions != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
	if stats.TotalMembers != 2 || stats.TotalAdmins != 1 {
		t.Fatalf("expected role-based counts, got %+v", stats)
	}
}

func TestStatisticsDistinctMembersByIDOrEmail(t *testing.T) {
	txs := []transaction.Transaction{
		{MemberID: "m1", Type: transaction.TypeDeposit, Amount: 1},
		{MemberID: "m1", Type: transaction.TypeDeposit, Amount: 1},
		{MemberEmail: "x@example.com", Type: transaction.TypeWithdrawal, Amount: 1},
	}

	stats := SummarizeStatistics(txs, nil)
	if stats.TotalMembers != 2 {
		t.Fatalf("expected 2 distinct members, got %d", stats.TotalMembers)
	}
	if stats.TotalWithdrawalCount != 1 {
		t.Fatalf("expected alias counted as withdrawal, got %d", stats.TotalWithdrawalCount)
	}
}

func TestAdminReportGroupsAndNullBucket(t *testing.T) {
	members := []member.Member{
		{Email: "zara@example.com", Photo: "https://img/zara-1.png"},
		{Email: "zara@example.com", Photo: "https://img/zara-2.png"},
	}
	txs := []transaction.Transaction{
		{Type: transaction.TypeDeposit, Amount: 100, ApprovedBy: "Zara", ApprovedByEmail: "zara@example.com"},
		{Type: transaction.TypeWithdrawal, Amount: 40, ApprovedBy: "Zara", ApprovedByEmail: "zara@example.com"},
		{Type: transaction.TypeDeposit, Amount: 10, ApprovedBy: "Amin", ApprovedByEmail: "amin@example.com"},
		{Type: transaction.TypePenalty, Amount: 7},
		{Type: transaction.TypeDeposit, Amount: 3},
	}

	report := BuildAdminReport(txs, members)
	if len(report.Admins) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(report.Admins))
	}

	null := report.Admins[0]
	if null.AdminName != nil || null.AdminEmail != nil {
		t.Fatalf("expected null bucket first, got %+v", null)
	}
	if null.TotalPenalties != 7 || null.TotalDeposits != 3 {
		t.Fatalf("unexpected null bucket totals: %+v", null)
	}

	if *report.Admins[1].AdminName != "Amin" || report.Admins[1].AdminImage != nil {
		t.Fatalf("expected Amin without image, got %+v", report.Admins[1])
	}
	zara := report.Admins[2]
	if *zara.AdminName != "Zara" || zara.AdminImage == nil || *zara.AdminImage != "https://img/zara-1.png" {
		t.Fatalf("expected Zara with first matching photo, got %+v", zara)
	}
	if zara.TotalDeposits != 100 || zara.TotalWithdrawals != 40 {
		t.Fatalf("unexpected Zara totals: %+v", zara)
	}

	if report.TotalDepositsApproved != 113 || report.TotalWithdrawalsApproved != 40 || report.TotalPenaltiesApproved != 7 {
		t.Fatalf("unexpected grand totals: %+v", report)
	}
}

func TestAdminReportEmpty(t *testing.T) {
	report := BuildAdminReport(nil, nil)
	if report.Admins == nil || len(report.Admins) != 0 {
		t.Fatalf("expected empty admins slice, got %#v", report.Admins)
	}
}

func TestSummarizePeriodMonthBuckets(t *testing.T) {
	txs := []transaction.Transaction{
		{Type: transaction.TypeDeposit, Amount: 100, Date: "2025-02-10", PaymentMethod: "bKash"},
		{Type: transaction.TypeDeposit, Amount: 50, Date: "2025-01-05"},
		{Type: transaction.TypeWithdraw, Amount: 20, Date: "2025-01-20", PaymentMethod: "Cash"},
		{Type: transaction.TypePenalty, Amount: 5, Date: "2025-07-01"},
	}

	summary := SummarizePeriod(txs, transaction.DateRange{})

	months := make(map[string]MonthTotal)
	names := make([]string, 0, len(summary.Monthly))
	for _, m := range summary.Monthly {
		months[m.Month] = m
		names = append(names, m.Month)
	}
	if months["February"].Deposit != 100 {
		t.Fatalf("expected February deposit 100, got %+v", months["February"])
	}
	if months["January"].Deposit != 50 || months["January"].Withdraw != 20 {
		t.Fatalf("expected January 50/20, got %+v", months["January"])
	}

	want := []string{"April", "February", "January", "July", "March", "May"}
	if len(names) != len(want) {
		t.Fatalf("expected months %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected alphabetical months %v, got %v", want, names)
		}
	}

	if summary.Totals.TotalDeposits != 150 || summary.Totals.TotalWithdrawals != 20 || summary.Totals.TotalPenalties != 5 {
		t.Fatalf("unexpected totals: %+v", summary.Totals)
	}
	if len(summary.Deposits) != 2 || summary.Deposits[0].Category != "Unspecified" || summary.Deposits[1].Category != "bKash" {
		t.Fatalf("unexpected deposit categories: %+v", summary.Deposits)
	}
	if len(summary.Withdrawals) != 1 || summary.Withdrawals[0].Total != 20 {
		t.Fatalf("unexpected withdrawal categories: %+v", summary.Withdrawals)
	}
}

func TestSummarizePeriodInclusiveRange(t *testing.T) {
	txs := []transaction.Transaction{
		{Type: transaction.TypeDeposit, Amount: 1, Date: "2025-01-01"},
		{Type: transaction.TypeDeposit, Amount: 10, Date: "2025-01-15"},
		{Type: transaction.TypeDeposit, Amount: 100, Date: "2025-01-31"},
		{Type: transaction.TypeDeposit, Amount: 1000, Date: "2025-02-01"},
		{Type: transaction.TypeDeposit, Amount: 5000, Date: "2024-12-31"},
	}

	summary := SummarizePeriod(txs, transaction.DateRange{Start: "2025-01-01", End: "2025-01-31"})
	if summary.Totals.TotalDeposits != 111 {
		t.Fatalf("expected both boundaries included, got %v", summary.Totals.TotalDeposits)
	}
}

func TestSummarizePeriodSkipsUnparseableMonth(t *testing.T) {
	txs := []transaction.Transaction{
		{Type: transaction.TypeDeposit, Amount: 9, Date: "sometime"},
	}

	summary := SummarizePeriod(txs, transaction.DateRange{})
	if summary.Totals.TotalDeposits != 9 {
		t.Fatalf("expected totals to include undated transaction, got %v", summary.Totals.TotalDeposits)
	}
	if len(summary.Monthly) != len(fillMonths) {
		t.Fatalf("expected only fill months, got %+v", summary.Monthly)
	}
	for _, m := range summary.Monthly {
		if m.Deposit != 0 || m.Withdraw != 0 {
			t.Fatalf("expected zero fill month, got %+v", m)
		}
	}
}

func TestLeaderboardKeepsJoinDate(t *testing.T) {
	joined := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	board := BuildLeaderboard([]member.Member{{ID: "1", Email: "a@example.com", CreatedAt: joined}}, nil)
	if !board[0].JoinDate.Equal(joined) || board[0].Rank != 1 {
		t.Fatalf("unexpected entry: %+v", board[0])
	}
}

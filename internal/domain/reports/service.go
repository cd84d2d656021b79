package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"somiti-server/internal/domain/member"
	"somiti-server/internal/domain/transaction"
)

type MemberSource interface {
	List(ctx context.Context, criteria []member.Criterion) ([]member.Member, error)
}

type TransactionSource interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error)
}

type Service struct {
	members      MemberSource
	transactions TransactionSource
}

func NewService(members MemberSource, transactions TransactionSource) *Service {
	return &Service{members: members, transactions: transactions}
}

func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	members, txs, err := s.snapshot(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return SummarizeStatistics(txs, members), nil
}

func (s *Service) AdminReport(ctx context.Context) (AdminReport, error) {
	members, txs, err := s.snapshot(ctx)
	if err != nil {
		return AdminReport{}, err
	}
	return BuildAdminReport(txs, members), nil
}

func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	members, txs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(members, txs), nil
}

func (s *Service) Summary(ctx context.Context, r transaction.DateRange) (PeriodSummary, error) {
	txs, err := s.transactions.List(ctx, transaction.ListFilter{Range: r})
	if err != nil {
		return PeriodSummary{}, fmt.Errorf("load transactions: %w", err)
	}
	return SummarizePeriod(txs, r), nil
}

// snapshot loads members and transactions concurrently.
func (s *Service) snapshot(ctx context.Context) ([]member.Member, []transaction.Transaction, error) {
	var (
		members []member.Member
		txs     []transaction.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.members.List(gctx, nil)
		if err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.List(gctx, transaction.ListFilter{})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return members, txs, nil
}

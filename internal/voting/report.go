package voting

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// VoterSummary は候補者に投票したユーザーの情報。
type VoterSummary struct {
	// ID はユーザーID。
	ID string `json:"id"`
	// Name は氏名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email,omitempty"`
	// VotedAt は投票日時。
	VotedAt time.Time `json:"votedAt"`
}

// CandidateWithVoters は候補者と投票者一覧の組。
type CandidateWithVoters struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Party     string         `json:"party"`
	VoteCount int            `json:"voteCount"`
	Voters    []VoterSummary `json:"voters"`
}

// Report は管理者向けの集計レポートを生成する。
type Report struct {
	stores Stores
}

// NewReport は新しいReportを生成する。
func NewReport(stores Stores) *Report {
	return &Report{stores: stores}
}

// CandidatesWithVoters は候補者ごとに投票したユーザーを投票順に並べて返す。
// 候補者一覧とユーザー一覧は並行に読み込む。
func (r *Report) CandidatesWithVoters(ctx context.Context) ([]CandidateWithVoters, error) {
	var (
		candidates []Candidate
		users      []User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = r.stores.Candidates.ListAllSortedByVoteCountDesc(gctx)
		if err != nil {
			return fmt.Errorf("候補者一覧の取得に失敗: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = r.stores.Voters.List(gctx)
		if err != nil {
			return fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	report := make([]CandidateWithVoters, 0, len(candidates))
	for _, cand := range candidates {
		voters := make([]VoterSummary, 0, len(cand.Votes))
		for _, v := range cand.Votes {
			summary := VoterSummary{ID: v.VoterID, VotedAt: v.CastAt}
			if u, ok := byID[v.VoterID]; ok {
				summary.Name = u.Name
				summary.Email = u.Email
			}
			voters = append(voters, summary)
		}
		report = append(report, CandidateWithVoters{
			ID:        cand.ID,
			Name:      cand.Name,
			Party:     cand.Party,
			VoteCount: cand.VoteCount,
			Voters:    voters,
		})
	}
	return report, nil
}

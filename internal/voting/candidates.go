package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/pkg/event"
)

// CandidateInput は候補者の登録・更新の入力。
type CandidateInput struct {
	Name  string
	Party string
	Age   int
}

// CandidateSummary は公開用の候補者情報。
type CandidateSummary struct {
	// ID は候補者ID。投票時に使用する。
	ID string `json:"id"`
	// Name は候補者名。
	Name string `json:"name"`
	// Party は所属政党。
	Party string `json:"party"`
}

// Candidates は候補者の管理を行う。
// 呼び出し側で管理者ロールを確認済みであることを前提とする。
type Candidates struct {
	stores Stores
	tx     TxRunner
	now    func() time.Time
}

// NewCandidates は新しいCandidatesを生成する。
func NewCandidates(stores Stores, tx TxRunner) *Candidates {
	return &Candidates{
		stores: stores,
		tx:     tx,
		now:    time.Now,
	}
}

// Create は候補者を登録する。得票数は0で始まる。
func (c *Candidates) Create(ctx context.Context, actor auth.Identity, in CandidateInput) (Candidate, error) {
	if err := validateCandidate(&in); err != nil {
		return Candidate{}, err
	}

	candidate := Candidate{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Party:     in.Party,
		Age:       in.Age,
		Votes:     []VoteEntry{},
		CreatedAt: c.now().UTC(),
	}

	err := c.tx.RunInTx(ctx, func(s Stores) error {
		if err := s.Candidates.Create(ctx, candidate); err != nil {
			return err
		}
		ev, err := event.New(candidate.ID, event.AggregateTypeCandidate, event.TypeCandidateCreated, event.CandidateCreatedData{
			ActorID: actor.SubjectID,
			Name:    candidate.Name,
			Party:   candidate.Party,
		})
		if err != nil {
			return err
		}
		return s.Events.Append(ctx, ev)
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("候補者の登録に失敗: %w", err)
	}
	return candidate, nil
}

// Update は候補者名・所属政党・年齢を更新する。得票は変更されない。
func (c *Candidates) Update(ctx context.Context, actor auth.Identity, candidateID string, in CandidateInput) (Candidate, error) {
	id, ok := canonicalID(candidateID)
	if !ok {
		return Candidate{}, ErrInvalidCandidateID
	}
	if err := validateCandidate(&in); err != nil {
		return Candidate{}, err
	}

	var updated Candidate
	err := c.tx.RunInTx(ctx, func(s Stores) error {
		current, err := s.Candidates.FindByID(ctx, id)
		if err != nil {
			return err
		}
		current.Name = in.Name
		current.Party = in.Party
		current.Age = in.Age
		if err := s.Candidates.Update(ctx, current); err != nil {
			return err
		}
		ev, err := event.New(id, event.AggregateTypeCandidate, event.TypeCandidateUpdated, event.CandidateUpdatedData{
			ActorID: actor.SubjectID,
			Name:    current.Name,
			Party:   current.Party,
		})
		if err != nil {
			return err
		}
		updated = current
		return s.Events.Append(ctx, ev)
	})
	if errors.Is(err, ErrNotFound) {
		return Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return Candidate{}, fmt.Errorf("候補者の更新に失敗: %w", err)
	}
	return updated, nil
}

// Delete は得票のない候補者を削除する。
// 得票がある場合はErrCandidateHasVotesを返し、票とフラグの対応を崩さない。
func (c *Candidates) Delete(ctx context.Context, actor auth.Identity, candidateID string) error {
	id, ok := canonicalID(candidateID)
	if !ok {
		return ErrInvalidCandidateID
	}

	err := c.tx.RunInTx(ctx, func(s Stores) error {
		if err := s.Candidates.DeleteIfNoVotes(ctx, id); err != nil {
			return err
		}
		ev, err := event.New(id, event.AggregateTypeCandidate, event.TypeCandidateDeleted, event.CandidateDeletedData{
			ActorID: actor.SubjectID,
		})
		if err != nil {
			return err
		}
		return s.Events.Append(ctx, ev)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrCandidateNotFound
	case errors.Is(err, ErrConflict):
		return ErrCandidateHasVotes
	default:
		return fmt.Errorf("候補者の削除に失敗: %w", err)
	}
}

// List は全候補者の公開情報を得票数の降順（同数は登録順）で返す。
func (c *Candidates) List(ctx context.Context) ([]CandidateSummary, error) {
	candidates, err := c.stores.Candidates.ListAllSortedByVoteCountDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("候補者一覧の取得に失敗: %w", err)
	}

	summaries := make([]CandidateSummary, 0, len(candidates))
	for _, cand := range candidates {
		summaries = append(summaries, CandidateSummary{ID: cand.ID, Name: cand.Name, Party: cand.Party})
	}
	return summaries, nil
}

func validateCandidate(in *CandidateInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Party = strings.TrimSpace(in.Party)

	switch {
	case in.Name == "":
		return invalidInput("name is required")
	case in.Party == "":
		return invalidInput("party is required")
	case in.Age <= 0:
		return invalidInput("age must be positive")
	}
	return nil
}

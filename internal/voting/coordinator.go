package voting

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/pkg/event"
)

// Coordinator は投票の整合性プロトコルを実行する。
//
// 候補者への票の追記と投票者フラグの更新を「結合更新」として扱い、
// 同一投票者からの並行リクエストのうち高々1つだけが成功することを保証する。
// プロセス内ロックは使用せず、ストレージの条件付き更新とトランザクションに依存する。
type Coordinator struct {
	// stores はトランザクション外の読み取りに使用するストア群。
	stores Stores
	// tx は結合更新のトランザクション境界。
	tx TxRunner
	// now は現在時刻を返す関数。
	now func() time.Time
}

// CoordinatorOption はCoordinatorの設定を変更する関数。
type CoordinatorOption func(*Coordinator)

// WithCoordinatorClock は現在時刻を返す関数を設定する。
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator は新しいCoordinatorを生成する。
func NewCoordinator(stores Stores, tx TxRunner, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		stores: stores,
		tx:     tx,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CastVote は身元の主体として候補者に1票を投じる。
//
// 管理者は候補者の妥当性に関わらずErrAdminCannotVoteで拒否する。それ以外は
// 候補者IDの形式（ErrInvalidCandidateID）、候補者の存在（ErrCandidateNotFound）、
// 投票者の存在（ErrVoterNotFound）、投票済みか（ErrAlreadyVoted）の順に検査する。
//
// 結合更新は単一トランザクション内で、投票者フラグの条件付き更新を最初に行い、
// 成功した場合に限り候補者へ票を追記する。追記に失敗した場合はフラグも元に戻る。
func (c *Coordinator) CastVote(ctx context.Context, identity auth.Identity, candidateID string) (VoteResult, error) {
	voter, voterErr := c.stores.Voters.FindByID(ctx, identity.SubjectID)
	if voterErr != nil && !errors.Is(voterErr, ErrNotFound) {
		return VoteResult{}, fmt.Errorf("投票者の取得に失敗: %w", voterErr)
	}
	if voterErr == nil && voter.Role == auth.RoleAdmin {
		return VoteResult{}, ErrAdminCannotVote
	}

	id, ok := canonicalID(candidateID)
	if !ok {
		return VoteResult{}, ErrInvalidCandidateID
	}

	if _, err := c.stores.Candidates.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return VoteResult{}, ErrCandidateNotFound
		}
		return VoteResult{}, fmt.Errorf("候補者の取得に失敗: %w", err)
	}

	if voterErr != nil {
		return VoteResult{}, ErrVoterNotFound
	}
	if voter.HasVoted {
		return VoteResult{}, ErrAlreadyVoted
	}

	castAt := c.now().UTC()
	err := c.tx.RunInTx(ctx, func(s Stores) error {
		// 条件付き更新が唯一の関門。ここで負けた並行リクエストは何も書き込まない。
		swapped, err := s.Voters.CompareAndSetHasVoted(ctx, voter.ID, false, true)
		if err != nil {
			return fmt.Errorf("投票済みフラグの更新に失敗: %w", err)
		}
		if !swapped {
			return ErrAlreadyVoted
		}

		if _, err := s.Candidates.AppendVoteAndIncrement(ctx, id, voter.ID, castAt); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return ErrCandidateNotFound
			case errors.Is(err, ErrConflict):
				return ErrAlreadyVoted
			default:
				return fmt.Errorf("票の追記に失敗: %w", err)
			}
		}

		ev, err := event.New(id, event.AggregateTypeCandidate, event.TypeVoteCast, event.VoteCastData{
			VoterID: voter.ID,
			CastAt:  castAt,
		})
		if err != nil {
			return err
		}
		return s.Events.Append(ctx, ev)
	})
	if err != nil {
		return VoteResult{}, err
	}

	return VoteResult{CandidateID: id, CastAt: castAt}, nil
}

// Tally は全候補者の得票数を降順で返す。同数の場合は登録順を保つ。
func (c *Coordinator) Tally(ctx context.Context) ([]TallyEntry, error) {
	candidates, err := c.stores.Candidates.ListAllSortedByVoteCountDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("候補者一覧の取得に失敗: %w", err)
	}

	// ストレージの並び順（同数は登録順）を崩さないよう安定ソートで再確認する
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.VoteCount, a.VoteCount)
	})

	tally := make([]TallyEntry, 0, len(candidates))
	for _, cand := range candidates {
		tally = append(tally, TallyEntry{Party: cand.Party, VoteCount: cand.VoteCount})
	}
	return tally, nil
}

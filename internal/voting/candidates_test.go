package voting_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/voting"
)

func TestCandidates(t *testing.T) {
	t.Parallel()

	t.Run("更新は得票を変更しないこと", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		voter := f.addUser(t, auth.RoleVoter)
		cand := f.addCandidate(t, "A")
		if _, err := f.coordinator.CastVote(ctx, identityOf(voter), cand.ID); err != nil {
			t.Fatalf("投票に失敗: %v", err)
		}

		got, err := f.candidates.Update(ctx, auth.Identity{SubjectID: "admin"}, cand.ID, voting.CandidateInput{
			Name: "新しい名前", Party: "新党", Age: 50,
		})
		if err != nil {
			t.Fatalf("更新に失敗: %v", err)
		}
		if got.Name != "新しい名前" || got.Party != "新党" || got.VoteCount != 1 || len(got.Votes) != 1 {
			t.Errorf("更新結果が不正: %+v", got)
		}
	})

	t.Run("更新時のIDの検査", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		in := voting.CandidateInput{Name: "名前", Party: "党", Age: 40}

		if _, err := f.candidates.Update(ctx, auth.Identity{}, "bad-id", in); !errors.Is(err, voting.ErrInvalidCandidateID) {
			t.Errorf("ErrInvalidCandidateIDが返されるべき: got %v", err)
		}
		if _, err := f.candidates.Update(ctx, auth.Identity{}, uuid.New().String(), in); !errors.Is(err, voting.ErrCandidateNotFound) {
			t.Errorf("ErrCandidateNotFoundが返されるべき: got %v", err)
		}
	})

	t.Run("入力が不正な場合はErrInvalidInputになること", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.candidates.Create(context.Background(), auth.Identity{}, voting.CandidateInput{Name: "名前", Party: "", Age: 40})
		if !errors.Is(err, voting.ErrInvalidInput) {
			t.Errorf("ErrInvalidInputが返されるべき: got %v", err)
		}
	})

	t.Run("得票のある候補者は削除できないこと", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		voter := f.addUser(t, auth.RoleVoter)
		voted := f.addCandidate(t, "A")
		empty := f.addCandidate(t, "B")
		if _, err := f.coordinator.CastVote(ctx, identityOf(voter), voted.ID); err != nil {
			t.Fatalf("投票に失敗: %v", err)
		}

		if err := f.candidates.Delete(ctx, auth.Identity{}, voted.ID); !errors.Is(err, voting.ErrCandidateHasVotes) {
			t.Errorf("ErrCandidateHasVotesが返されるべき: got %v", err)
		}
		if err := f.candidates.Delete(ctx, auth.Identity{}, empty.ID); err != nil {
			t.Errorf("削除に失敗: %v", err)
		}
		if err := f.candidates.Delete(ctx, auth.Identity{}, empty.ID); !errors.Is(err, voting.ErrCandidateNotFound) {
			t.Errorf("ErrCandidateNotFoundが返されるべき: got %v", err)
		}

		list, err := f.candidates.List(ctx)
		if err != nil {
			t.Fatalf("一覧の取得に失敗: %v", err)
		}
		if len(list) != 1 || list[0].ID != voted.ID {
			t.Errorf("一覧が不正: %+v", list)
		}
	})
}

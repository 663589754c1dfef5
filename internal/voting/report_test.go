package voting_test

import (
	"context"
	"testing"

	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/voting"
)

func TestCandidatesWithVoters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	a := f.addCandidate(t, "A")
	b := f.addCandidate(t, "B")
	first := f.addUser(t, auth.RoleVoter)
	second := f.addUser(t, auth.RoleVoter)
	for _, voter := range []voting.User{first, second} {
		if _, err := f.coordinator.CastVote(ctx, identityOf(voter), b.ID); err != nil {
			t.Fatalf("投票に失敗: %v", err)
		}
	}

	got, err := voting.NewReport(f.stores).CandidatesWithVoters(ctx)
	if err != nil {
		t.Fatalf("レポートの生成に失敗: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("件数が不正: got %d, want 2", len(got))
	}

	if got[0].ID != b.ID || got[0].VoteCount != 2 {
		t.Fatalf("先頭の候補者が不正: %+v", got[0])
	}
	if got[0].Voters[0].ID != first.ID || got[0].Voters[1].ID != second.ID {
		t.Errorf("投票者が投票順に並んでいない: %+v", got[0].Voters)
	}
	if got[0].Voters[0].Name != first.Name {
		t.Errorf("投票者名が不正: got %s, want %s", got[0].Voters[0].Name, first.Name)
	}
	if got[1].ID != a.ID || len(got[1].Voters) != 0 {
		t.Errorf("得票のない候補者が不正: %+v", got[1])
	}
}

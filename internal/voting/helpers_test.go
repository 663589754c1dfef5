package voting_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/store"
	"github.com/nao1215/ballot/internal/voting"
)

var baseTime = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// fixture はSQLiteストアに束縛されたテスト用の依存一式。
type fixture struct {
	db          *store.DB
	stores      voting.Stores
	coordinator *voting.Coordinator
	candidates  *voting.Candidates
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(context.Background(), store.DriverSQLite, store.SQLiteDSN(filepath.Join(t.TempDir(), "voting.db")))
	if err != nil {
		t.Fatalf("DBのオープンに失敗: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stores := db.Stores()
	return &fixture{
		db:     db,
		stores: stores,
		coordinator: voting.NewCoordinator(stores, db, voting.WithCoordinatorClock(func() time.Time {
			return baseTime
		})),
		candidates: voting.NewCandidates(stores, db),
	}
}

func (f *fixture) addUser(t *testing.T, role auth.Role) voting.User {
	t.Helper()
	user := voting.User{
		ID:               uuid.New().String(),
		Name:             "テスト太郎",
		Age:              30,
		Address:          "東京都千代田区",
		AadharCardNumber: uuid.New().String(),
		PasswordHash:     "hash",
		Role:             role,
		CreatedAt:        baseTime,
	}
	if err := f.stores.Voters.Create(context.Background(), user); err != nil {
		t.Fatalf("ユーザーの作成に失敗: %v", err)
	}
	return user
}

func (f *fixture) addCandidate(t *testing.T, party string) voting.Candidate {
	t.Helper()
	cand, err := f.candidates.Create(context.Background(), auth.Identity{SubjectID: "admin"}, voting.CandidateInput{
		Name:  "候補" + party,
		Party: party,
		Age:   45,
	})
	if err != nil {
		t.Fatalf("候補者の作成に失敗: %v", err)
	}
	return cand
}

func identityOf(user voting.User) auth.Identity {
	return auth.Identity{
		SubjectID: user.ID,
		TokenID:   uuid.New().String(),
		IssuedAt:  baseTime,
		ExpiresAt: baseTime.Add(auth.DefaultTokenTTL),
	}
}

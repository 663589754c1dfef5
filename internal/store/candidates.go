package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/ballot/internal/voting"
)

const candidateColumns = "id, name, party, age, vote_count, created_at"

// CandidateRepository はcandidatesテーブルとvotesテーブルを操作する。
type CandidateRepository struct {
	db *DB
	q  queryer
}

var _ voting.CandidateStore = (*CandidateRepository)(nil)

// FindByID はIDで候補者を票付きで取得する。
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (voting.Candidate, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.findByID(ctx, r.q, id)
}

func (r *CandidateRepository) findByID(ctx context.Context, q queryer, id string) (voting.Candidate, error) {
	cand, err := scanCandidate(q.QueryRowContext(ctx,
		r.db.rebind("SELECT "+candidateColumns+" FROM candidates WHERE id = ?"), id))
	if err != nil {
		return voting.Candidate{}, mapError(err)
	}

	votes, err := r.loadVotes(ctx, q, "WHERE candidate_id = ?", id)
	if err != nil {
		return voting.Candidate{}, err
	}
	cand.Votes = votes[cand.ID]
	if cand.Votes == nil {
		cand.Votes = []voting.VoteEntry{}
	}
	return cand, nil
}

// Create は候補者を新規登録する。
func (r *CandidateRepository) Create(ctx context.Context, cand voting.Candidate) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.q.ExecContext(ctx, r.db.rebind(`
		INSERT INTO candidates (id, name, party, age, vote_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`),
		cand.ID, cand.Name, cand.Party, cand.Age, cand.CreatedAt.UTC(),
	)
	return mapError(err)
}

// Update は候補者名・所属政党・年齢を更新する。
func (r *CandidateRepository) Update(ctx context.Context, cand voting.Candidate) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		r.db.rebind("UPDATE candidates SET name = ?, party = ?, age = ? WHERE id = ?"),
		cand.Name, cand.Party, cand.Age, cand.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// DeleteIfNoVotes は得票数が0の場合に限り候補者を削除する。
func (r *CandidateRepository) DeleteIfNoVotes(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.db.inTx(ctx, r.q, func(q queryer) error {
		res, err := q.ExecContext(ctx,
			r.db.rebind("DELETE FROM candidates WHERE id = ? AND vote_count = 0"), id)
		if err != nil {
			return mapError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("削除件数の取得に失敗: %w", err)
		}
		if n == 1 {
			return nil
		}

		// 削除できなかった理由が不在か得票済みかを判別する
		var exists int
		err = q.QueryRowContext(ctx, r.db.rebind("SELECT 1 FROM candidates WHERE id = ?"), id).Scan(&exists)
		if err != nil {
			return mapError(err)
		}
		return voting.ErrConflict
	})
}

// AppendVoteAndIncrement は票を追記し得票数を1増やす。
// 同一投票者の票が既にある場合はvoting.ErrConflictを返し、得票数も変わらない。
func (r *CandidateRepository) AppendVoteAndIncrement(ctx context.Context, id, voterID string, castAt time.Time) (voting.Candidate, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var cand voting.Candidate
	err := r.db.inTx(ctx, r.q, func(q queryer) error {
		res, err := q.ExecContext(ctx,
			r.db.rebind("UPDATE candidates SET vote_count = vote_count + 1 WHERE id = ?"), id)
		if err != nil {
			return mapError(err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, r.db.rebind(`
			INSERT INTO votes (candidate_id, user_id, cast_at) VALUES (?, ?, ?)`),
			id, voterID, castAt.UTC(),
		); err != nil {
			return mapError(err)
		}

		cand, err = r.findByID(ctx, q, id)
		return err
	})
	if err != nil {
		return voting.Candidate{}, err
	}
	return cand, nil
}

// ListAllSortedByVoteCountDesc は全候補者を票付きで得票数の降順、同数は登録順で返す。
func (r *CandidateRepository) ListAllSortedByVoteCountDesc(ctx context.Context) ([]voting.Candidate, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		"SELECT "+candidateColumns+" FROM candidates ORDER BY vote_count DESC, seq ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	candidates := []voting.Candidate{}
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	votes, err := r.loadVotes(ctx, r.q, "")
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].Votes = votes[candidates[i].ID]
		if candidates[i].Votes == nil {
			candidates[i].Votes = []voting.VoteEntry{}
		}
	}
	return candidates, nil
}

// loadVotes は票を投票順に読み込み、候補者IDごとにまとめて返す。
func (r *CandidateRepository) loadVotes(ctx context.Context, q queryer, where string, args ...any) (map[string][]voting.VoteEntry, error) {
	rows, err := q.QueryContext(ctx,
		r.db.rebind("SELECT candidate_id, user_id, cast_at FROM votes "+where+" ORDER BY seq"), args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	votes := make(map[string][]voting.VoteEntry)
	for rows.Next() {
		var (
			candidateID string
			entry       voting.VoteEntry
			castAt      timestamp
		)
		if err := rows.Scan(&candidateID, &entry.VoterID, &castAt); err != nil {
			return nil, err
		}
		entry.CastAt = castAt.Time
		votes[candidateID] = append(votes[candidateID], entry)
	}
	return votes, rows.Err()
}

func scanCandidate(row rowScanner) (voting.Candidate, error) {
	var (
		cand      voting.Candidate
		createdAt timestamp
	)
	if err := row.Scan(&cand.ID, &cand.Name, &cand.Party, &cand.Age, &cand.VoteCount, &createdAt); err != nil {
		return voting.Candidate{}, err
	}
	cand.CreatedAt = createdAt.Time
	return cand, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/voting"
)

const userColumns = `id, name, age, email, mobile, address, aadhar_card_number,
	password_hash, role, has_voted, created_at`

// UserRepository はusersテーブルを操作する。
// voting.VoterStore と auth.SubjectDirectory を実装する。
type UserRepository struct {
	db *DB
	q  queryer
}

var (
	_ voting.VoterStore      = (*UserRepository)(nil)
	_ auth.SubjectDirectory = (*UserRepository)(nil)
)

// FindByID はIDでユーザーを取得する。
func (r *UserRepository) FindByID(ctx context.Context, id string) (voting.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// FindByCredentialRef は本人確認番号でユーザーを取得する。
func (r *UserRepository) FindByCredentialRef(ctx context.Context, ref string) (voting.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE aadhar_card_number = ?", ref)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (voting.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.q.QueryRowContext(ctx, r.db.rebind(query), arg))
	if err != nil {
		return voting.User{}, mapError(err)
	}
	return user, nil
}

// Create はユーザーを新規登録する。
// 本人確認番号の重複や2人目の管理者はvoting.ErrConflictになる。
func (r *UserRepository) Create(ctx context.Context, user voting.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.q.ExecContext(ctx, r.db.rebind(`
		INSERT INTO users (id, name, age, email, mobile, address, aadhar_card_number,
			password_hash, role, has_voted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Name, user.Age, user.Email, user.Mobile, user.Address, user.AadharCardNumber,
		user.PasswordHash, string(user.Role), user.HasVoted, user.CreatedAt.UTC(),
	)
	return mapError(err)
}

// Save はプロフィールとパスワードハッシュを更新する。ロールと投票済みフラグは更新しない。
func (r *UserRepository) Save(ctx context.Context, user voting.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, r.db.rebind(`
		UPDATE users
		SET name = ?, age = ?, email = ?, mobile = ?, address = ?, password_hash = ?
		WHERE id = ?`),
		user.Name, user.Age, user.Email, user.Mobile, user.Address, user.PasswordHash, user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// List は全ユーザーを登録順に返す。
func (r *UserRepository) List(ctx context.Context) ([]voting.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY seq")
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := []voting.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CompareAndSetHasVoted は投票済みフラグが expected の場合に限り next に更新する。
// 単一のUPDATE文で判定と更新を行うため、並行実行しても成功するのは1件のみ。
func (r *UserRepository) CompareAndSetHasVoted(ctx context.Context, id string, expected, next bool) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		r.db.rebind("UPDATE users SET has_voted = ? WHERE id = ? AND has_voted = ?"),
		next, id, expected,
	)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	return n == 1, nil
}

// RoleOf は主体の現在のロールを返す。存在しない場合はfoundがfalseになる。
func (r *UserRepository) RoleOf(ctx context.Context, subjectID string) (auth.Role, bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var role string
	err := r.q.QueryRowContext(ctx, r.db.rebind("SELECT role FROM users WHERE id = ?"), subjectID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return auth.Role(role), true, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (voting.User, error) {
	var (
		user      voting.User
		role      string
		createdAt timestamp
	)
	err := row.Scan(
		&user.ID, &user.Name, &user.Age, &user.Email, &user.Mobile, &user.Address,
		&user.AadharCardNumber, &user.PasswordHash, &role, &user.HasVoted, &createdAt,
	)
	if err != nil {
		return voting.User{}, err
	}
	user.Role = auth.Role(role)
	user.CreatedAt = createdAt.Time
	return user, nil
}

// requireAffected は更新対象が存在しなかった場合にvoting.ErrNotFoundを返す。
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return voting.ErrNotFound
	}
	return nil
}

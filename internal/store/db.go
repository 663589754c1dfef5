package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nao1215/ballot/internal/voting"
	"github.com/nao1215/ballot/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations
var migrations embed.FS

// Driver はデータベースドライバの種類。
type Driver string

const (
	// DriverSQLite はmodernc.org/sqliteを使用する。
	DriverSQLite Driver = "sqlite"
	// DriverPostgres はpgxを使用する。
	DriverPostgres Driver = "postgres"
)

// DefaultTimeout はストア呼び出し1回あたりの既定の制限時間。
const DefaultTimeout = 5 * time.Second

// SQLiteDSN はファイルパスから並行投票に必要な設定を含むSQLiteのDSNを生成する。
// 書き込みトランザクションは BEGIN IMMEDIATE で開始し、ロック待ちはbusy_timeoutで吸収する。
func SQLiteDSN(path string) string {
	return "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_time_format=sqlite"
}

// DB はSQLデータベース接続と方言を保持する。
type DB struct {
	// sqlDB はコネクションプール。
	sqlDB *sql.DB
	// driver は接続先の方言。
	driver Driver
	// timeout はストア呼び出し1回あたりの制限時間。
	timeout time.Duration
}

// Option はDBの設定を変更する関数。
type Option func(*DB)

// WithTimeout はストア呼び出し1回あたりの制限時間を設定する。
func WithTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.timeout = d
		}
	}
}

// Open はデータベースに接続し、マイグレーションを適用する。
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*DB, error) {
	var (
		driverName string
		dialect    migration.Dialect
	)
	switch driver {
	case DriverSQLite:
		driverName, dialect = "sqlite", migration.SQLite
	case DriverPostgres:
		driverName, dialect = "pgx", migration.Postgres
	default:
		return nil, fmt.Errorf("未対応のデータベースドライバ: %q", driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	db := &DB{
		sqlDB:   sqlDB,
		driver:  driver,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}

	if err := migration.Run(ctx, sqlDB, dialect, migrations, "migrations/"+string(driver)); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return db, nil
}

// Close は接続を閉じる。
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// SQL は内部のコネクションプールを返す。メトリクス収集に使用する。
func (db *DB) SQL() *sql.DB {
	return db.sqlDB
}

// Ping はデータベースへの疎通を確認する。
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()
	return db.sqlDB.PingContext(ctx)
}

// Stores はコネクションプールに束縛されたストア群を返す。
func (db *DB) Stores() voting.Stores {
	return db.bind(db.sqlDB)
}

// Users はコネクションプールに束縛されたユーザーリポジトリを返す。
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db, q: db.sqlDB}
}

// RunInTx はfnを単一のトランザクション内で実行する。
// fnがエラーを返した場合やコンテキストが取り消された場合はロールバックする。
func (db *DB) RunInTx(ctx context.Context, fn func(stores voting.Stores) error) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(db.bind(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", mapError(err))
	}
	return nil
}

func (db *DB) bind(q queryer) voting.Stores {
	return voting.Stores{
		Voters:     &UserRepository{db: db, q: q},
		Candidates: &CandidateRepository{db: db, q: q},
		Events:     &EventRepository{db: db, q: q},
	}
}

// queryer は*sql.DBと*sql.Txの共通部分。
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTimeout はストア呼び出し1回分の制限時間をコンテキストに設定する。
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}

// inTx はqがトランザクションであればそのまま、そうでなければ新しいトランザクションでfnを実行する。
func (db *DB) inTx(ctx context.Context, q queryer, fn func(q queryer) error) error {
	if _, ok := q.(*sql.Tx); ok {
		return fn(q)
	}

	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rebind は ? プレースホルダを方言に合わせて書き換える。
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// mapError はドライバ固有の一意制約違反をvoting.ErrConflictに変換する。
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return voting.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", voting.ErrConflict, pgErr.ConstraintName)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", voting.ErrConflict, liteErr.Error())
		}
	}
	return err
}

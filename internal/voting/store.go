package voting

import (
	"context"
	"time"

	"github.com/nao1215/ballot/pkg/event"
)

// VoterStore はユーザー（投票者）の永続化を担う。
// 対象が存在しない場合はErrNotFound、一意制約違反はErrConflictを返す。
type VoterStore interface {
	// FindByID はIDでユーザーを取得する。
	FindByID(ctx context.Context, id string) (User, error)
	// FindByCredentialRef は本人確認番号でユーザーを取得する。
	FindByCredentialRef(ctx context.Context, ref string) (User, error)
	// Create はユーザーを新規登録する。
	Create(ctx context.Context, user User) error
	// Save はプロフィールとパスワードハッシュを更新する。
	// ロールと投票済みフラグは更新しない。
	Save(ctx context.Context, user User) error
	// List は全ユーザーを登録順に返す。
	List(ctx context.Context) ([]User, error)
	// CompareAndSetHasVoted は投票済みフラグが expected の場合に限り next に更新する。
	// 更新できた場合にtrueを返す。ストレージ上で原子的に実行される。
	CompareAndSetHasVoted(ctx context.Context, id string, expected, next bool) (bool, error)
}

// CandidateStore は候補者の永続化を担う。
type CandidateStore interface {
	// FindByID はIDで候補者を票付きで取得する。
	FindByID(ctx context.Context, id string) (Candidate, error)
	// Create は候補者を新規登録する。
	Create(ctx context.Context, candidate Candidate) error
	// Update は候補者名・所属政党・年齢を更新する。得票は更新しない。
	Update(ctx context.Context, candidate Candidate) error
	// DeleteIfNoVotes は得票数が0の場合に限り候補者を削除する。
	// 得票がある場合はErrConflictを返す。
	DeleteIfNoVotes(ctx context.Context, id string) error
	// AppendVoteAndIncrement は票を追記し得票数を1増やす。ストレージ上で原子的に実行される。
	AppendVoteAndIncrement(ctx context.Context, id, voterID string, castAt time.Time) (Candidate, error)
	// ListAllSortedByVoteCountDesc は全候補者を得票数の降順、同数は登録順で返す。
	ListAllSortedByVoteCountDesc(ctx context.Context) ([]Candidate, error)
}

// EventStore は監査イベントの永続化を担う。
type EventStore interface {
	// Append はイベントを追記する。
	Append(ctx context.Context, ev *event.Event) error
	// ListRecent は新しい順に最大limit件のイベントを返す。
	ListRecent(ctx context.Context, limit int) ([]event.Event, error)
}

// Stores は同一のストレージ接続（またはトランザクション）に束縛されたストア群。
type Stores struct {
	Voters     VoterStore
	Candidates CandidateStore
	Events     EventStore
}

// TxRunner はトランザクション境界を提供する。
// fnがエラーを返した場合、fn内の変更はすべてロールバックされる。
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(stores Stores) error) error
}

package voting

import (
	"time"

	"github.com/nao1215/ballot/internal/auth"
)

// User は投票者または管理者のアカウント。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string `json:"id"`
	// Name は氏名。
	Name string `json:"name"`
	// Age は年齢。
	Age int `json:"age"`
	// Email はメールアドレス。
	Email string `json:"email,omitempty"`
	// Mobile は携帯電話番号。
	Mobile string `json:"mobile,omitempty"`
	// Address は住所。
	Address string `json:"address"`
	// AadharCardNumber はログインに使用する本人確認番号。一意。
	AadharCardNumber string `json:"aadharCardNumber"`
	// PasswordHash はbcryptでハッシュ化したパスワード。JSONには出力しない。
	PasswordHash string `json:"-"`
	// Role はユーザーのロール。
	Role auth.Role `json:"role"`
	// HasVoted は投票済みであればtrue。falseからtrueへ一度だけ遷移する。
	HasVoted bool `json:"isVoted"`
	// CreatedAt は登録日時。
	CreatedAt time.Time `json:"createdAt"`
}

// VoteEntry は候補者に記録された1票。
type VoteEntry struct {
	// VoterID は投票したユーザーのID。
	VoterID string `json:"user"`
	// CastAt は投票日時。
	CastAt time.Time `json:"votedAt"`
}

// Candidate は立候補者。
// VoteCountは常にlen(Votes)と等しい。
type Candidate struct {
	// ID は候補者の一意識別子（UUID）。
	ID string `json:"id"`
	// Name は候補者名。
	Name string `json:"name"`
	// Party は所属政党。
	Party string `json:"party"`
	// Age は年齢。
	Age int `json:"age"`
	// VoteCount は得票数。
	VoteCount int `json:"voteCount"`
	// Votes は投票順に並んだ票。追記のみ。
	Votes []VoteEntry `json:"votes"`
	// CreatedAt は登録日時。
	CreatedAt time.Time `json:"createdAt"`
}

// TallyEntry は集計結果の1行。
type TallyEntry struct {
	// Party は所属政党。
	Party string `json:"party"`
	// VoteCount は得票数。
	VoteCount int `json:"count"`
}

// VoteResult は投票成功時の確認情報。
type VoteResult struct {
	// CandidateID は投票先の候補者ID。
	CandidateID string `json:"candidateId"`
	// CastAt は投票日時。
	CastAt time.Time `json:"votedAt"`
}

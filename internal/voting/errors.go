package voting

import "errors"

// Kind は投票ドメインのエラー種別を表す。
type Kind string

const (
	// KindInvalidCandidateID は候補者IDの形式が不正であることを表す。
	KindInvalidCandidateID Kind = "invalid_candidate_id"
	// KindCandidateNotFound は候補者が存在しないことを表す。
	KindCandidateNotFound Kind = "candidate_not_found"
	// KindVoterNotFound は投票者が存在しないことを表す。
	KindVoterNotFound Kind = "voter_not_found"
	// KindAdminCannotVote は管理者が投票しようとしたことを表す。
	KindAdminCannotVote Kind = "admin_cannot_vote"
	// KindAlreadyVoted は投票者が既に投票済みであることを表す。
	KindAlreadyVoted Kind = "already_voted"

	// KindInvalidInput は入力値が不正であることを表す。
	KindInvalidInput Kind = "invalid_input"
	// KindInvalidCredentials は本人確認番号またはパスワードが一致しないことを表す。
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindDuplicateCredential は本人確認番号が登録済みであることを表す。
	KindDuplicateCredential Kind = "duplicate_credential"
	// KindAdminExists は管理者が既に存在することを表す。
	KindAdminExists Kind = "admin_exists"
	// KindCandidateHasVotes は得票済みの候補者を削除しようとしたことを表す。
	KindCandidateHasVotes Kind = "candidate_has_votes"
)

// Error は投票ドメインの失敗を表す。
// Error()は種別のみを返し、詳細はDetailに保持する。
type Error struct {
	// Kind はエラーの種別。
	Kind Kind
	// Detail はクライアントに返してよい補足情報（入力検証エラーのみ）。
	Detail string
	// cause は内部的な原因。
	cause error
}

// Error はエラーの種別を文字列として返す。
func (e *Error) Error() string {
	return string(e.Kind)
}

// Unwrap は内部的な原因を返す。
func (e *Error) Unwrap() error {
	return e.cause
}

// Is は種別が一致する場合にtrueを返す。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// 種別ごとの番兵エラー。
var (
	ErrInvalidCandidateID  = &Error{Kind: KindInvalidCandidateID}
	ErrCandidateNotFound   = &Error{Kind: KindCandidateNotFound}
	ErrVoterNotFound       = &Error{Kind: KindVoterNotFound}
	ErrAdminCannotVote     = &Error{Kind: KindAdminCannotVote}
	ErrAlreadyVoted        = &Error{Kind: KindAlreadyVoted}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials}
	ErrDuplicateCredential = &Error{Kind: KindDuplicateCredential}
	ErrAdminExists         = &Error{Kind: KindAdminExists}
	ErrCandidateHasVotes   = &Error{Kind: KindCandidateHasVotes}
)

// invalidInput は補足情報付きの入力検証エラーを生成する。
func invalidInput(detail string) error {
	return &Error{Kind: KindInvalidInput, Detail: detail}
}

// ストレージ層が返す番兵エラー。サービス層でドメインエラーに変換する。
var (
	// ErrNotFound は対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("not found")
	// ErrConflict は一意制約違反を表す。
	ErrConflict = errors.New("conflict")
)

// KindOf はエラーが投票ドメインのエラーであればその種別を返す。
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

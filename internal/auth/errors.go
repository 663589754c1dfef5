package auth

// Kind は認証・認可エラーの種別を表す。
// クライアントに返すのは種別のみで、内部の原因文字列は公開しない。
type Kind string

const (
	// KindMissingCredential は資格情報ヘッダーが存在しないことを表す。
	KindMissingCredential Kind = "missing_credential"
	// KindMalformedCredential は資格情報ヘッダーの形式が不正であることを表す。
	KindMalformedCredential Kind = "malformed_credential"
	// KindInvalidToken は署名不一致・期限切れ・ペイロード不正のいずれかを表す。
	KindInvalidToken Kind = "invalid_token"
	// KindForbidden は要求されたロールを持たないことを表す。
	KindForbidden Kind = "forbidden"
	// KindSubjectNotFound はトークンの主体がストレージに存在しないことを表す。
	KindSubjectNotFound Kind = "subject_not_found"
)

// Error は認証・認可処理の失敗を表す。
// Error()は種別のみを返し、原因はUnwrap経由でログ出力にのみ使用する。
type Error struct {
	// Kind はエラーの種別。
	Kind Kind
	// cause は内部的な原因。クライアントには公開しない。
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
// errors.Is(err, auth.ErrInvalidToken) の形で判定できる。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// 種別ごとの番兵エラー。errors.Isの比較対象として使用する。
var (
	ErrMissingCredential   = &Error{Kind: KindMissingCredential}
	ErrMalformedCredential = &Error{Kind: KindMalformedCredential}
	ErrInvalidToken        = &Error{Kind: KindInvalidToken}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrSubjectNotFound     = &Error{Kind: KindSubjectNotFound}
)

// wrap は原因を保持した種別付きエラーを生成する。
func wrap(kind Kind, cause error) error {
	return &Error{Kind: kind, cause: cause}
}

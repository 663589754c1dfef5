// Package event は監査ログとして永続化するドメインイベントを定義する。
package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
	// AggregateTypeCandidate は候補者エンティティを表す。
	AggregateTypeCandidate AggregateType = "Candidate"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeUserSignedUp はユーザーが登録されたことを表す。
	TypeUserSignedUp Type = "UserSignedUp"
	// TypePasswordChanged はユーザーがパスワードを変更したことを表す。
	TypePasswordChanged Type = "PasswordChanged"

	// TypeCandidateCreated は候補者が登録されたことを表す。
	TypeCandidateCreated Type = "CandidateCreated"
	// TypeCandidateUpdated は候補者情報が更新されたことを表す。
	TypeCandidateUpdated Type = "CandidateUpdated"
	// TypeCandidateDeleted は候補者が削除されたことを表す。
	TypeCandidateDeleted Type = "CandidateDeleted"

	// TypeVoteCast は票が投じられたことを表す。
	TypeVoteCast Type = "VoteCast"
)

// Event は追記のみで運用する不変の監査レコード。
// 記録対象の変更と同じトランザクションで永続化される。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// UserSignedUpData はUserSignedUpイベントのデータ。
// 本人確認番号やパスワード等の秘匿情報は含めない。
type UserSignedUpData struct {
	// Role は登録されたロール。
	Role string `json:"role"`
}

// PasswordChangedData はPasswordChangedイベントのデータ。
type PasswordChangedData struct{}

// CandidateCreatedData はCandidateCreatedイベントのデータ。
type CandidateCreatedData struct {
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
	// Name は候補者名。
	Name string `json:"name"`
	// Party は所属政党。
	Party string `json:"party"`
}

// CandidateUpdatedData はCandidateUpdatedイベントのデータ。
type CandidateUpdatedData struct {
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
	// Name は更新後の候補者名。
	Name string `json:"name"`
	// Party は更新後の所属政党。
	Party string `json:"party"`
}

// CandidateDeletedData はCandidateDeletedイベントのデータ。
type CandidateDeletedData struct {
	// ActorID は操作した管理者のID。
	ActorID string `json:"actor_id"`
}

// VoteCastData はVoteCastイベントのデータ。
type VoteCastData struct {
	// VoterID は投票したユーザーのID。
	VoterID string `json:"voter_id"`
	// CastAt は投票日時。
	CastAt time.Time `json:"cast_at"`
}

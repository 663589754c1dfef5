package event

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("VoteCastDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		castAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		data := VoteCastData{VoterID: "voter-1", CastAt: castAt}

		before := time.Now().UTC()
		ev, err := New("candidate-1", AggregateTypeCandidate, TypeVoteCast, data)
		after := time.Now().UTC()

		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "candidate-1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "candidate-1")
		}
		if ev.AggregateType != AggregateTypeCandidate {
			t.Errorf("AggregateType = %q, want %q", ev.AggregateType, AggregateTypeCandidate)
		}
		if ev.EventType != TypeVoteCast {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeVoteCast)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		var decoded VoteCastData
		if err := json.Unmarshal(ev.Data, &decoded); err != nil {
			t.Fatalf("Dataのデシリアライズに失敗: %v", err)
		}
		if decoded.VoterID != "voter-1" || !decoded.CastAt.Equal(castAt) {
			t.Errorf("Data = %+v, want %+v", decoded, data)
		}
	})

	t.Run("生成ごとに異なるIDが付与されること", func(t *testing.T) {
		t.Parallel()

		a, err := New("user-1", AggregateTypeUser, TypeUserSignedUp, UserSignedUpData{Role: "voter"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		b, err := New("user-1", AggregateTypeUser, TypeUserSignedUp, UserSignedUpData{Role: "voter"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if a.ID == b.ID {
			t.Errorf("IDが重複: %q", a.ID)
		}
	})

	t.Run("シリアライズできないデータはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("x", AggregateTypeUser, TypeUserSignedUp, make(chan int)); err == nil {
			t.Fatal("エラーが返るべき")
		}
	})
}

// TestDecodeData はDecodeData関数を検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("元の構造体に復元できること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("candidate-1", AggregateTypeCandidate, TypeCandidateCreated, CandidateCreatedData{
			ActorID: "admin-1",
			Name:    "Asha",
			Party:   "Green",
		})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		data, err := DecodeData[CandidateCreatedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if data.ActorID != "admin-1" || data.Name != "Asha" || data.Party != "Green" {
			t.Errorf("DecodeData() = %+v", data)
		}
	})

	t.Run("不正なJSONはエラーになること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: json.RawMessage(`{"voter_id":`)}
		if _, err := DecodeData[VoteCastData](ev); err == nil {
			t.Fatal("エラーが返るべき")
		}
	})
}

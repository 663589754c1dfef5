package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("カウンタが種別ごとに加算されること", func(t *testing.T) {
		t.Parallel()
		m := New()

		m.IncrementVotesCast()
		m.IncrementVotesRejected("already_voted")
		m.IncrementVotesRejected("already_voted")
		m.IncrementAuthFailures("invalid_token")

		if got := testutil.ToFloat64(m.VotesCast); got != 1 {
			t.Errorf("VotesCast = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.VotesRejected.WithLabelValues("already_voted")); got != 2 {
			t.Errorf("VotesRejected = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("invalid_token")); got != 1 {
			t.Errorf("AuthFailures = %v, want 1", got)
		}
	})

	t.Run("インスタンスごとにレジストリが独立していること", func(t *testing.T) {
		t.Parallel()
		first := New()
		second := New()

		first.IncrementUsersCreated()
		if got := testutil.ToFloat64(second.UsersCreated); got != 0 {
			t.Errorf("別インスタンスのカウンタが加算された: %v", got)
		}
	})

	t.Run("ハンドラがメトリクスを公開すること", func(t *testing.T) {
		t.Parallel()
		m := New()
		m.IncrementVotesCast()

		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body, _ := io.ReadAll(w.Body)
		if !strings.Contains(string(body), "voting_votes_cast_total 1") {
			t.Errorf("メトリクスが出力されていない: %s", body)
		}
	})
}

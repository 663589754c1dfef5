// Package metrics は投票バックエンドのPrometheusメトリクスを定義する。
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はアプリケーションのメトリクスを保持する。
type Metrics struct {
	registry *prometheus.Registry

	// VotesCast は成功した投票数。
	VotesCast prometheus.Counter
	// VotesRejected は拒否された投票数（エラー種別ごと）。
	VotesRejected *prometheus.CounterVec
	// AuthFailures は認証・認可の失敗数（エラー種別ごと）。
	AuthFailures *prometheus.CounterVec
	// UsersCreated は登録されたユーザー数。
	UsersCreated prometheus.Counter
}

// New はメトリクスを専用のレジストリに登録して生成する。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "voting_votes_cast_total",
			Help: "Total number of votes successfully cast",
		}),
		VotesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voting_votes_rejected_total",
			Help: "Total number of rejected vote attempts by error kind",
		}, []string{"kind"}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voting_auth_failures_total",
			Help: "Total number of authentication and authorization failures by error kind",
		}, []string{"kind"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "voting_users_created_total",
			Help: "Total number of users created",
		}),
	}
}

// RegisterDB はコネクションプールの統計をメトリクスに登録する。
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// IncrementVotesCast は成功した投票数を1増やす。
func (m *Metrics) IncrementVotesCast() {
	m.VotesCast.Inc()
}

// IncrementVotesRejected は拒否された投票数を1増やす。
func (m *Metrics) IncrementVotesRejected(kind string) {
	m.VotesRejected.WithLabelValues(kind).Inc()
}

// IncrementAuthFailures は認証・認可の失敗数を1増やす。
func (m *Metrics) IncrementAuthFailures(kind string) {
	m.AuthFailures.WithLabelValues(kind).Inc()
}

// IncrementUsersCreated は登録されたユーザー数を1増やす。
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// Handler はメトリクスを公開するHTTPハンドラを返す。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package store は投票ドメインのストア群をSQLデータベース上に実装する。
//
// SQLite（modernc.org/sqlite）とPostgreSQL（pgx）の2方言に対応する。
// 投票者フラグの条件付き更新と票の追記は同一トランザクション内で実行され、
// SQLiteでは BEGIN IMMEDIATE、PostgreSQLでは行ロックによって並行実行が直列化される。
package store

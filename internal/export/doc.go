// Package export は管理者向けにユーザー一覧をCSVおよびPDF形式で出力する。
// パスワードハッシュは出力しない。
package export

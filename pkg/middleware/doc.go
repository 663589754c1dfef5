// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンによる認証、ロールによる認可、パニックリカバリを含む。
// 認証・認可の失敗はエラー種別のみを {"error": "<kind>"} 形式で返し、内部的な原因は返さない。
package middleware

// Package auth は投票バックエンドの認証・認可の中核を提供する。
//
// 署名付きIDトークンの発行と検証（TokenService）、リクエストからの
// 資格情報抽出と検証（Gate）、ストレージ上のロールに基づく権限判定
// （RoleGuard）を含む。トークンは主体（subject）の身元のみを証明し、
// 権限はリクエストごとにストレージから解決する。
package auth

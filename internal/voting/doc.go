// Package voting は投票バックエンドのドメインロジックを提供する。
//
// 中核は投票の整合性プロトコル（Coordinator）で、1投票者につき1票という
// 不変条件を並行リクエスト下でも保証する。投票者フラグの条件付き更新と
// 候補者への票の追記を単一のストレージトランザクションで行う。
//
// そのほか、アカウント管理（Accounts）、候補者管理（Candidates）、
// 候補者と投票者の突き合わせレポート（Report）を含む。
package voting

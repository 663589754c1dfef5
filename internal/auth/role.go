package auth

import (
	"context"
	"fmt"
)

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleVoter は一般の投票者。
	RoleVoter Role = "voter"
	// RoleAdmin は候補者管理と集計出力を行う管理者。
	RoleAdmin Role = "admin"
)

// Valid はロールが既知の値であればtrueを返す。
func (r Role) Valid() bool {
	return r == RoleVoter || r == RoleAdmin
}

// SubjectDirectory は主体IDから現在のロールを解決する。
// 主体が存在しない場合はfoundにfalseを返す。
type SubjectDirectory interface {
	RoleOf(ctx context.Context, subjectID string) (role Role, found bool, err error)
}

// RoleGuard はストレージ上のロールに基づいて特権操作の可否を判定する。
// ロールはトークンに含めず毎回ストレージから解決するため、
// ロール変更はトークンの再発行なしに即座に反映される。
type RoleGuard struct {
	// subjects はロールを解決するストレージ。
	subjects SubjectDirectory
}

// NewRoleGuard は新しいRoleGuardを生成する。
func NewRoleGuard(subjects SubjectDirectory) *RoleGuard {
	return &RoleGuard{subjects: subjects}
}

// Authorize は身元が要求ロールを持つか判定する。
// 主体が存在しない場合はErrSubjectNotFound、ロールが一致しない場合はErrForbiddenを返す。
func (g *RoleGuard) Authorize(ctx context.Context, identity Identity, required Role) error {
	if identity.SubjectID == "" {
		return ErrSubjectNotFound
	}

	role, found, err := g.subjects.RoleOf(ctx, identity.SubjectID)
	if err != nil {
		return fmt.Errorf("ロールの解決に失敗: %w", err)
	}
	if !found {
		return ErrSubjectNotFound
	}
	if role != required {
		return ErrForbidden
	}
	return nil
}

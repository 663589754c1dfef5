package voting

import (
	"strings"

	"github.com/google/uuid"
)

// canonicalID は標準形式（ハイフン区切り36文字）のUUID文字列を小文字に正規化して返す。
// 標準形式でない場合はfalseを返す。
func canonicalID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return "", false
	}
	canonical := id.String()
	if canonical != strings.ToLower(s) {
		return "", false
	}
	return canonical, true
}

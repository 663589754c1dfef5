package store

import (
	"fmt"
	"time"
)

// timeLayouts はSQLiteから文字列として返る日時の書式。
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// timestamp はドライバごとに異なる日時表現を time.Time として読み込む。
type timestamp struct {
	time.Time
}

// Scan はsql.Scannerを実装する。
func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("日時として読み込めない型: %T", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("日時の解析に失敗: %q", s)
}

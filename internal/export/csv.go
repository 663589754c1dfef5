package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/ballot/internal/voting"
)

// csvHeader はCSVの列名。
var csvHeader = []string{"name", "age", "email", "mobile", "address", "aadharCardNumber", "role", "isVoted"}

// WriteUsersCSV はユーザー一覧をCSV形式でwに書き出す。
func WriteUsersCSV(w io.Writer, users []voting.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗: %w", err)
	}

	for _, u := range users {
		record := []string{
			u.Name,
			strconv.Itoa(u.Age),
			u.Email,
			u.Mobile,
			u.Address,
			u.AadharCardNumber,
			string(u.Role),
			strconv.FormatBool(u.HasVoted),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSVレコードの書き込みに失敗: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

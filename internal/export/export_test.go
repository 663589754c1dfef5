package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/voting"
)

func testUsers() []voting.User {
	return []voting.User{
		{
			ID:               "u1",
			Name:             "Asha Rao",
			Age:              34,
			Email:            "asha@example.com",
			Mobile:           "9000000001",
			Address:          "12 MG Road, Bengaluru",
			AadharCardNumber: "111122223333",
			PasswordHash:     "$2a$10$secret-hash",
			Role:             auth.RoleVoter,
			HasVoted:         true,
			CreatedAt:        time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:               "u2",
			Name:             "Admin, Chief",
			Age:              50,
			Address:          "1 Parliament St",
			AadharCardNumber: "000000000001",
			PasswordHash:     "$2a$10$admin-hash",
			Role:             auth.RoleAdmin,
		},
	}
}

func TestWriteUsersCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteUsersCSV(&buf, testUsers()); err != nil {
		t.Fatalf("CSVの書き出しに失敗: %v", err)
	}

	if strings.Contains(buf.String(), "hash") {
		t.Error("パスワードハッシュが出力されている")
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSVの読み込みに失敗: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("行数が不正: got %d, want 3", len(records))
	}
	if strings.Join(records[0], ",") != "name,age,email,mobile,address,aadharCardNumber,role,isVoted" {
		t.Errorf("ヘッダーが不正: %v", records[0])
	}
	if records[1][7] != "true" || records[2][7] != "false" {
		t.Errorf("isVotedが不正: %v, %v", records[1][7], records[2][7])
	}
	if records[2][0] != "Admin, Chief" {
		t.Errorf("カンマを含む値が正しく扱われていない: %q", records[2][0])
	}
}

func TestWriteUsersPDF(t *testing.T) {
	t.Parallel()

	t.Run("PDFとして出力されること", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := WriteUsersPDF(&buf, testUsers()); err != nil {
			t.Fatalf("PDFの書き出しに失敗: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Errorf("PDFのシグネチャがない: %q", buf.Bytes()[:min(8, buf.Len())])
		}
	})

	t.Run("複数ページにわたる場合も出力できること", func(t *testing.T) {
		t.Parallel()
		var users []voting.User
		for range 60 {
			users = append(users, testUsers()...)
		}
		var buf bytes.Buffer
		if err := WriteUsersPDF(&buf, users); err != nil {
			t.Fatalf("PDFの書き出しに失敗: %v", err)
		}
	})

	t.Run("ユーザーが0件でも出力できること", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := WriteUsersPDF(&buf, nil); err != nil {
			t.Fatalf("PDFの書き出しに失敗: %v", err)
		}
	})
}

func TestYesNo(t *testing.T) {
	t.Parallel()

	if yesNo(true) != "Yes" || yesNo(false) != "No" {
		t.Error("yesNoの変換が不正")
	}
}

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/nao1215/ballot/internal/voting"
)

// pdfColumn はPDFの表の列定義。widthはページ幅に対する比率。
type pdfColumn struct {
	label string
	width float64
	value func(u voting.User) string
}

var pdfColumns = []pdfColumn{
	{"Name", 0.15, func(u voting.User) string { return u.Name }},
	{"Age", 0.05, func(u voting.User) string { return strconv.Itoa(u.Age) }},
	{"Email", 0.20, func(u voting.User) string { return u.Email }},
	{"Mobile", 0.10, func(u voting.User) string { return u.Mobile }},
	{"Address", 0.25, func(u voting.User) string { return u.Address }},
	{"Aadhar Card", 0.12, func(u voting.User) string { return u.AadharCardNumber }},
	{"Role", 0.08, func(u voting.User) string { return string(u.Role) }},
	{"Voted", 0.05, func(u voting.User) string { return yesNo(u.HasVoted) }},
}

const (
	pdfMargin    = 10.0
	pdfRowHeight = 8.0
	pdfTitle     = "User Data Report"
)

// WriteUsersPDF はユーザー一覧をA4横向きの表としてPDF形式でwに書き出す。
func WriteUsersPDF(w io.Writer, users []voting.User) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	tableWidth := pageWidth - 2*pdfMargin

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(76, 175, 80)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(tableWidth*col.width, pdfRowHeight, col.label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(76, 175, 80)
	pdf.CellFormat(tableWidth, 12, pdfTitle, "", 1, "C", false, 0, "")
	header()
	// 2ページ目以降は改ページ時に表ヘッダーのみを出す
	pdf.SetHeaderFunc(header)

	for i, u := range users {
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		for _, col := range pdfColumns {
			pdf.CellFormat(tableWidth*col.width, pdfRowHeight, tr(col.value(u)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("PDFの出力に失敗: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Package pdf renders feedback reports attached to outgoing emails.
package pdf

import (
	"bytes"

	"gogaku_suite/internal/model"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "feedback"

// RenderFeedback は構造化フィードバックを横向きの表としてPDF化します。
// 見出し行 + セグメントごとの1行 + 末尾の注記2行という構成。
// fontPath に日本語グリフを含むTTFを指定しない場合はコアフォントで描画する
// (CJK文字は化けるため本番では必ずフォントを設定すること)。
func RenderFeedback(segments []model.FeedbackSegment, annotation1, annotation2, fontPath string) ([]byte, error) {
	doc := fpdf.New("L", "mm", "A4", "")

	family := "Helvetica"
	if fontPath != "" {
		doc.AddUTF8Font(fontFamily, "", fontPath)
		family = fontFamily
	}

	doc.AddPage()
	doc.SetFont(family, "", 10)

	pageWidth, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	usable := pageWidth - left - right
	colWidths := []float64{usable * 0.34, usable * 0.33, usable * 0.33}
	headers := []string{"課題", "模範", "実際の解答"}

	// 見出し行
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers {
		doc.CellFormat(colWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	// セグメント行
	for _, segment := range segments {
		cells := []string{segment.Task, segment.Expected, segment.Actual}
		for i, cell := range cells {
			doc.CellFormat(colWidths[i], 8, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	// 注記2行
	doc.Ln(4)
	doc.MultiCell(usable, 6, annotation1, "", "L", false)
	doc.MultiCell(usable, 6, annotation2, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var kindTitles = map[string]string{
	KindInstitutional: "INSTITUTIONAL REPORT",
	KindNAAC:          "NAAC SELF STUDY REPORT",
	KindNIRF:          "NIRF DATA SUBMISSION",
}

// Filename is the attachment name of a rendered report.
func Filename(rep Report) string {
	return fmt.Sprintf("%s-%s.pdf", rep.Kind, rep.AcademicYear)
}

// RenderPDF writes rep as an A4 document.
func RenderPDF(w io.Writer, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, kindTitles[rep.Kind], "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, tr(rep.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Academic year "+rep.AcademicYear, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFillColor(240, 240, 240)
	for i, sec := range rep.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%d. %s", i+1, sec.Heading)), "", 1, "L", false, 0, "")
		if len(sec.Entries) == 0 {
			pdf.SetFont("Arial", "I", 10)
			pdf.CellFormat(0, 6, "No entries.", "", 1, "L", false, 0, "")
			pdf.Ln(3)
			continue
		}
		for j, e := range sec.Entries {
			fill := j%2 == 1
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(60, 7, tr(e.Label), "1", 0, "L", fill, 0, "")
			pdf.SetFont("Arial", "", 10)
			value := strings.TrimSpace(e.Value)
			if value == "" {
				value = "-"
			}
			pdf.MultiCell(110, 7, tr(value), "1", "L", fill)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, "Last updated "+rep.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")
	return pdf.Output(w)
}

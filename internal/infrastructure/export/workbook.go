// Package export renders a ledger and its performance review to an .xlsx
// workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
)

// Sheet names.
const (
	SheetTranscript = "Bảng điểm"
	SheetSummary    = "Tổng kết"
	SheetReview     = "Đánh giá"
)

var transcriptHeader = []any{
	"Học kỳ", "Mã HP", "Tên học phần", "Tín chỉ",
	"Quá trình", "Giữa kỳ", "Thực hành", "Cuối kỳ", "Điểm HP", "Trạng thái",
}

// ──────────────────────────── Workbook ────────────────────────────

// Workbook writes the ledger sheets. The review sheet is added only when
// report is non-nil.
func Workbook(w io.Writer, l *ledger.Ledger, report *curriculum.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetTranscript)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeTranscript(f, l, header); err != nil {
		return err
	}
	if err := writeSummary(f, l, header); err != nil {
		return err
	}
	if report != nil {
		if err := writeReview(f, report, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ──────────────────────────── Sheets ────────────────────────────

func writeTranscript(f *excelize.File, l *ledger.Ledger, header int) error {
	sw, err := f.NewStreamWriter(SheetTranscript)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	_ = sw.SetColWidth(1, 1, 32)
	_ = sw.SetColWidth(3, 3, 40)

	headerRow := make([]any, len(transcriptHeader))
	for i, h := range transcriptHeader {
		headerRow[i] = excelize.Cell{StyleID: header, Value: h}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, s := range l.Records {
		for _, c := range s.Courses {
			values := []any{
				s.Label, c.Code, c.Name, c.Credits,
				score(c.Scores.Process), score(c.Scores.Midterm),
				score(c.Scores.Practice), score(c.Scores.Final),
				totalScore(c.TotalScore), string(c.Status),
			}
			if err := sw.SetRow(cell("A", row), values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}
	return sw.Flush()
}

func writeSummary(f *excelize.File, l *ledger.Ledger, header int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 32)

	rows := [][]any{
		{"MSSV", l.MSSV},
		{"Tổng tín chỉ đã học", l.Summary.TotalCreditsTaken},
		{"Tổng tín chỉ tích lũy", l.Summary.TotalCreditsAccumulated},
		{"Điểm trung bình", score(l.Summary.OverallAverage)},
		{"Tín chỉ yêu cầu", l.Progress.TotalCreditsRequired},
		{"Tình trạng", l.Progress.GraduationStatus},
		{},
		{"Học kỳ", "Tín chỉ", "Điểm TB", "Trạng thái"},
	}
	for _, s := range l.Records {
		rows = append(rows, []any{s.Label, s.CreditsTaken, score(s.Average), string(s.Status)})
	}

	if err := setRows(f, SheetSummary, rows); err != nil {
		return err
	}
	return f.SetCellStyle(SheetSummary, "A8", "D8", header)
}

func writeReview(f *excelize.File, r *curriculum.Report, header int) error {
	if _, err := f.NewSheet(SheetReview); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	_ = f.SetColWidth(SheetReview, "A", "A", 36)

	rows := [][]any{
		{"Học kỳ", "Môn qua", "Môn rớt", "Tín chỉ rớt", "Tín chỉ đã học"},
	}
	for _, sp := range r.SemesterPerformance {
		rows = append(rows, []any{sp.Semester, sp.PassedCourses, sp.FailedCourses, sp.FailedCredits, sp.TakenCredits})
	}
	rows = append(rows,
		[]any{"Tổng", r.Overall.TotalPassedCourses, r.Overall.TotalFailedCourses, r.Overall.TotalFailedCredits, r.Overall.TotalTakenCredits},
		[]any{},
		[]any{"Tiến độ (%)", r.Progress.PercentageCompleted},
		[]any{"Tín chỉ đã hoàn thành", r.Progress.CompletedRequiredCredits},
		[]any{"Tín chỉ chương trình", r.Progress.TotalRequiredCredits},
		[]any{"Môn còn lại", len(r.Progress.RemainingRequiredCourses)},
		[]any{"Đánh giá", r.Outlook.Assessment},
		[]any{"Học kỳ còn lại", r.Outlook.RemainingSemesters},
		[]any{"Tín chỉ/học kỳ cần đạt", r.Outlook.AverageCreditsPerSemesterNeeded},
		[]any{"Chi phí học lại (VND)", r.RetakeCost.TotalCost},
	)

	if err := setRows(f, SheetReview, rows); err != nil {
		return err
	}
	return f.SetCellStyle(SheetReview, "A1", "E1", header)
}

// ──────────────────────────── Helpers ────────────────────────────

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell("A", i+1), &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// score renders a missing score as an empty cell.
func score(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func totalScore(t ledger.TotalScore) any {
	if t.IsNumeric() {
		return *t.Value
	}
	return t.String()
}

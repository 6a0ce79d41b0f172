package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func printLedger(w io.Writer, l *ledger.Ledger) {
	fmt.Fprintf(w, "MSSV %s  synced %s\n\n", l.MSSV, l.SyncedAt.Format("2006-01-02 15:04"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range l.Records {
		fmt.Fprintf(tw, "%s\t%s\tcredits %d\tavg %s\n", s.Label, s.Status, s.CreditsTaken, optional(s.Average))
		for _, c := range s.Courses {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\n", c.Code, c.Name, c.Credits, c.TotalScore.String(), c.Status)
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\ncredits taken %d, accumulated %d, overall average %s\n",
		l.Summary.TotalCreditsTaken, l.Summary.TotalCreditsAccumulated, optional(l.Summary.OverallAverage))
}

func printSubjects(w io.Writer, title string, subjects []curriculum.Subject) {
	if len(subjects) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range subjects {
		name := s.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", s.Code, name, s.Credits, strings.Join(s.Prerequisites, ","))
	}
	_ = tw.Flush()
}

func printRecommendation(w io.Writer, r curriculum.Recommendation) {
	if r.IsGraduationFallback() {
		printSubjects(w, "Graduation", r.Graduation)
		return
	}
	printSubjects(w, "General", r.General)
	printSubjects(w, "Foundation", r.Foundation)
	printSubjects(w, "Specialized", r.Specialized)
}

func printReport(w io.Writer, r curriculum.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Semester\tPassed\tFailed\tFailed credits\tTaken credits")
	for _, s := range r.SemesterPerformance {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Semester, s.PassedCourses, s.FailedCourses, s.FailedCredits, s.TakenCredits)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nProgress: %.2f%% (%d/%d credits), %d subjects remaining\n",
		r.Progress.PercentageCompleted, r.Progress.CompletedRequiredCredits,
		r.Progress.TotalRequiredCredits, len(r.Progress.RemainingRequiredCourses))
	fmt.Fprintf(w, "Outlook: %s\n", r.Outlook.Assessment)
	fmt.Fprintf(w, "Semester %d, %d remaining, %.2f credits per semester needed\n",
		r.Outlook.CurrentSemester, r.Outlook.RemainingSemesters, r.Outlook.AverageCreditsPerSemesterNeeded)
	fmt.Fprintf(w, "Retake cost: %d VND (%d per credit)\n", r.RetakeCost.TotalCost, r.RetakeCost.CostPerCredit)
}

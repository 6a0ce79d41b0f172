package curriculum

import (
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
)

// Graduation outlook assessments, from mildest to most severe.
const (
	OutlookOnTrack   = "Đang tiến triển tốt"
	OutlookRetakes   = "Cần chú ý đến các môn học bị Không hoàn thành và có kế hoạch học lại hợp lý."
	OutlookSlow      = "Tiến độ đang chậm, cần tăng cường học tập để theo kịp chương trình."
	OutlookHighRisk  = "Có nguy cơ cao không tốt nghiệp đúng hạn do khối lượng môn học còn lại lớn."
	failedCoursesCap = 3
	slowProgressPct  = 50.0
	heavyLoadCredits = 15
)

// SemesterPerformance summarizes one semester. Pending courses are skipped.
type SemesterPerformance struct {
	Semester      string `json:"semester"`
	FailedCourses int    `json:"failed_courses"`
	PassedCourses int    `json:"passed_courses"`
	FailedCredits int    `json:"failed_credits"`
	TakenCredits  int    `json:"taken_credits"`
}

// OverallPerformance is the sum over all semesters.
type OverallPerformance struct {
	TotalFailedCourses int `json:"total_failed_courses"`
	TotalFailedCredits int `json:"total_failed_credits"`
	TotalPassedCourses int `json:"total_passed_courses"`
	TotalTakenCredits  int `json:"total_taken_credits"`
}

// Progress is the curriculum completion state.
type Progress struct {
	PercentageCompleted      float64   `json:"percentage_completed"`
	CompletedRequiredCredits int       `json:"completed_required_credits"`
	TotalRequiredCredits     int       `json:"total_required_credits"`
	RemainingRequiredCourses []Subject `json:"remaining_required_courses"`
	CompletedCourseCodes     []string  `json:"completed_course_codes"`
}

// Outlook is the graduation-on-time estimate.
type Outlook struct {
	Assessment                      string  `json:"assessment"`
	CurrentSemester                 int     `json:"current_semester"`
	RemainingSemesters              int     `json:"remaining_semesters"`
	AverageCreditsPerSemesterNeeded float64 `json:"average_credits_per_semester_needed"`
}

// RetakeCost is the tuition needed to retake failed credits.
type RetakeCost struct {
	TotalCost     int64 `json:"total_cost"`
	CostPerCredit int64 `json:"cost_per_credit"`
}

// Report is the derived, non-persisted performance review.
type Report struct {
	SemesterPerformance []SemesterPerformance `json:"semester_performance"`
	Overall             OverallPerformance    `json:"overall_performance"`
	Progress            Progress              `json:"progress"`
	Outlook             Outlook               `json:"graduation_outlook"`
	RetakeCost          RetakeCost            `json:"retake_cost"`
}

// Performance computes per-semester and overall pass/fail figures.
func Performance(l *ledger.Ledger) ([]SemesterPerformance, OverallPerformance) {
	var (
		per     []SemesterPerformance
		overall OverallPerformance
	)
	for _, s := range l.Records {
		sp := SemesterPerformance{Semester: s.Label}
		for _, c := range s.Courses {
			if c.Status == ledger.StatusNotYetCompleted {
				continue
			}
			sp.TakenCredits += c.Credits
			switch {
			case c.Status == ledger.StatusFailed:
				sp.FailedCourses++
				sp.FailedCredits += c.Credits
			case !c.IsExempt():
				sp.PassedCourses++
			}
		}
		per = append(per, sp)
		overall.TotalFailedCourses += sp.FailedCourses
		overall.TotalFailedCredits += sp.FailedCredits
		overall.TotalPassedCourses += sp.PassedCourses
		overall.TotalTakenCredits += sp.TakenCredits
	}
	return per, overall
}

// ComputeProgress matches the program against the ledger.
func ComputeProgress(p *Program, l *ledger.Ledger) Progress {
	done := CompletedCodes(l)
	pr := Progress{
		TotalRequiredCredits:     p.TotalCredits(),
		RemainingRequiredCourses: []Subject{},
		CompletedCourseCodes:     []string{},
	}
	for _, s := range p.Subjects {
		if s.Code == "" {
			continue
		}
		if done[s.Code] {
			pr.CompletedRequiredCredits += s.Credits
			pr.CompletedCourseCodes = append(pr.CompletedCourseCodes, s.Code)
			continue
		}
		pr.RemainingRequiredCourses = append(pr.RemainingRequiredCourses, s)
	}
	if pr.TotalRequiredCredits > 0 {
		pr.PercentageCompleted = ledger.Round2(float64(pr.CompletedRequiredCredits) / float64(pr.TotalRequiredCredits) * 100)
	}
	return pr
}

// ComputeOutlook estimates whether the student graduates on time. Each
// rule that fires replaces the previous assessment, so the last one wins.
func ComputeOutlook(pr Progress, overall OverallPerformance, semesters int, policy Policy) Outlook {
	remaining := policy.StandardSemesters - semesters
	remainingCredits := pr.TotalRequiredCredits - pr.CompletedRequiredCredits

	perSemester := float64(remainingCredits)
	if remaining > 0 {
		perSemester = float64(remainingCredits) / float64(remaining)
	}

	assessment := OutlookOnTrack
	if overall.TotalFailedCourses > failedCoursesCap {
		assessment = OutlookRetakes
	}
	if pr.PercentageCompleted < slowProgressPct {
		assessment = OutlookSlow
	}
	if remaining <= 1 && remainingCredits > heavyLoadCredits {
		assessment = OutlookHighRisk
	}

	return Outlook{
		Assessment:                      assessment,
		CurrentSemester:                 semesters,
		RemainingSemesters:              remaining,
		AverageCreditsPerSemesterNeeded: ledger.Round2(perSemester),
	}
}

// ComputeRetakeCost prices the failed credits.
func ComputeRetakeCost(failedCredits int, policy Policy) RetakeCost {
	return RetakeCost{
		TotalCost:     int64(failedCredits) * policy.CostPerCredit,
		CostPerCredit: policy.CostPerCredit,
	}
}

// Evaluate builds the full performance review.
func Evaluate(p *Program, l *ledger.Ledger, policy Policy) Report {
	per, overall := Performance(l)
	pr := ComputeProgress(p, l)
	return Report{
		SemesterPerformance: per,
		Overall:             overall,
		Progress:            pr,
		Outlook:             ComputeOutlook(pr, overall, len(l.Records), policy),
		RetakeCost:          ComputeRetakeCost(overall.TotalFailedCredits, policy),
	}
}

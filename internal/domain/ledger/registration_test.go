package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regRow(code, name, credits string) []string {
	return []string{"1", code, "Nhóm", name, credits, "Thứ 2"}
}

func TestParseRegistrationTitle(t *testing.T) {
	assert.Equal(t, "Học kỳ 1 - Năm học 2024-2025",
		ParseRegistrationTitle("THÔNG TIN ĐĂNG KÝ HỌC PHẦN HỌC KỲ 1 NĂM 2024 - 2025"))
	assert.Equal(t, "Học kỳ 2 - Năm học 2023-2024",
		ParseRegistrationTitle("học kỳ 2 năm 2023 - 2024"))
	assert.Equal(t, CurrentSemesterFallback, ParseRegistrationTitle("Đăng ký học phần"))
	assert.Equal(t, CurrentSemesterFallback, ParseRegistrationTitle(""))
}

func TestParseRegistrationTitle_MatchesTranscriptLabel(t *testing.T) {
	label := ParseRegistrationTitle("HỌC KỲ 1 NĂM 2023 - 2024")
	assert.Equal(t, hk1, label)
	assert.Equal(t, SortKey(hk1), SortKey(label))
}

func TestParseRegistration_MergesLabRows(t *testing.T) {
	rows := [][]string{
		{"STT", "Mã lớp", "Nhóm", "Tên môn học", "Số TC"},
		regRow("NT106.P11", "Lập trình mạng căn bản", "3"),
		regRow("NT106.P11.1", "Lập trình mạng căn bản (TH)", "1"),
		regRow("IT004.P12", "Cơ sở dữ liệu", "4"),
		regRow("SS004.P13.2", "Kỹ năng nghề nghiệp (THỰC HÀNH)", "1"),
		{"short", "row"},
	}

	reg := ParseRegistration("HỌC KỲ 1 NĂM 2024 - 2025", rows)

	assert.Equal(t, "Học kỳ 1 - Năm học 2024-2025", reg.Label)
	require.Len(t, reg.Courses, 2)
	assert.Equal(t, "NT106.P11", reg.Courses[0].Code)
	assert.Equal(t, "Lập trình mạng căn bản", reg.Courses[0].Name)
	assert.Equal(t, 4, reg.Courses[0].Credits)
	assert.Equal(t, 4, reg.Courses[1].Credits)
	assert.Equal(t, 1, reg.DroppedLabRows)

	for _, c := range reg.Courses {
		assert.Equal(t, StatusNotYetCompleted, c.Status)
		assert.True(t, c.TotalScore.IsEmpty())
		assert.Nil(t, c.Scores.Final)
	}
}

func TestParseRegistration_HeaderOnlyAndEmpty(t *testing.T) {
	reg := ParseRegistration("", nil)
	assert.Equal(t, CurrentSemesterFallback, reg.Label)
	assert.Empty(t, reg.Courses)

	reg = ParseRegistration("", [][]string{{"STT", "Mã lớp", "Nhóm", "Tên môn học", "Số TC"}})
	assert.Empty(t, reg.Courses)
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uit-hub/academic-ledger/config"
	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/infrastructure/external/portal"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

func TestCommandTree(t *testing.T) {
	want := []string{
		"sync", "ledger show", "ledger list", "ledger recompute",
		"recommend", "review", "curriculum import", "curriculum show",
		"curriculum list", "export", "migrate up", "migrate down",
	}
	for _, path := range want {
		c, _, err := rootCmd.Find(strings.Fields(path))
		require.NoError(t, err, path)
		assert.Equal(t, strings.Fields(path)[len(strings.Fields(path))-1], c.Name())
	}
}

func TestSyncCmd_Args(t *testing.T) {
	assert.Error(t, syncCmd.Args(syncCmd, nil))
	assert.NoError(t, syncCmd.Args(syncCmd, []string{"21520001"}))
}

func TestPolicyFromConfig(t *testing.T) {
	p := config.DefaultPolicy()
	p.GraduationFallback = []string{" nt522 ", "", "NT541"}

	got := policyFromConfig(p)

	assert.Equal(t, []string{"NT522", "NT541"}, got.GraduationFallback)
	assert.Equal(t, 8, got.StandardSemesters)
	assert.Equal(t, int64(980000), got.CostPerCredit)
	assert.Equal(t, curriculum.BucketGeneral, got.BucketOf("Ngoại ngữ"))
}

func TestRedisConfig(t *testing.T) {
	rc := redisConfig(config.RedisConfig{URL: "redis://localhost:6380/2", Port: 6380, PoolSize: 3})
	assert.Equal(t, "redis://localhost:6380/2", rc.URL)
	assert.Equal(t, "localhost", rc.Host)
	assert.Equal(t, 6380, rc.Port)
	assert.Equal(t, 3, rc.PoolSize)
	assert.Equal(t, 5*time.Second, rc.DialTimeout)
}

func TestNewApp_RequiresDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  url: \"\"\n  host: \"\"\nlog:\n  level: error\n"), 0o600))

	old := configPath
	configPath = path
	defer func() { configPath = old }()

	_, err := newApp(context.Background())
	assert.ErrorContains(t, err, "database is not configured")
}

func TestPortalAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sinhvien/kqhoctap":
			_, _ = w.Write([]byte(`<h2>BẢNG ĐIỂM SINH VIÊN</h2><table>
<tr><td>Họ và tên:</td><td>Trần Thị B</td><td>Ngày sinh:</td><td>02-03-2003</td><td>Giới tính:</td><td>Nữ</td></tr>
<tr><td>MSSV:</td><td><strong>21520002</strong></td><td>Lớp:</td><td>ATTT2021</td><td>Khoa:</td><td>MMT&TT</td></tr>
<tr><td>Bậc:</td><td>Đại học</td><td>Hệ:</td><td>Chính quy</td></tr></table>`))
		case "/sinhvien/dkhp/thongtindangky":
			_, _ = w.Write([]byte(`<div class="title_thongtindangky">HỌC KỲ 2 NĂM 2023 - 2024</div><table><tr><td>h</td></tr></table>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := portal.DefaultClientConfig(srv.URL)
	cfg.Logger = logger.Nop()
	a := &portalAdapter{client: portal.NewClient(cfg)}

	td, err := a.FetchTranscript(context.Background(), "21520002", "cookie")
	require.NoError(t, err)
	assert.Equal(t, "21520002", td.StudentNumber)
	assert.Equal(t, "Trần Thị B", td.FullName)
	assert.Equal(t, "Nữ", td.Gender)
	assert.Equal(t, "ATTT2021", td.Class)
	assert.Equal(t, "Chính quy", td.TrainingSystem)

	rd, err := a.FetchRegistration(context.Background(), "cookie")
	require.NoError(t, err)
	assert.Equal(t, "Học kỳ 2 - Năm học 2023-2024", ledger.ParseRegistrationTitle(rd.Title))

	_, err = a.FetchMajor(context.Background(), "cookie")
	assert.Error(t, err)
}

func TestPrinters(t *testing.T) {
	avg := 7.5
	l := &ledger.Ledger{
		MSSV: "21520001",
		Records: []ledger.Semester{{
			Label:   "Học kỳ 1 - Năm học 2021-2022",
			Status:  ledger.SemesterCompleted,
			Average: &avg,
			Courses: []ledger.Course{{Code: "IT001", Name: "Nhập môn lập trình", Credits: 4, TotalScore: ledger.NumericScore(7.5), Status: ledger.StatusPassed}},
		}},
		Summary: ledger.Summary{TotalCreditsTaken: 4, TotalCreditsAccumulated: 4, OverallAverage: &avg},
	}

	var buf bytes.Buffer
	printLedger(&buf, l)
	assert.Contains(t, buf.String(), "IT001")
	assert.Contains(t, buf.String(), "overall average 7.50")

	buf.Reset()
	printReport(&buf, curriculum.Report{
		Outlook:    curriculum.Outlook{Assessment: curriculum.OutlookOnTrack, RemainingSemesters: 7},
		RetakeCost: curriculum.RetakeCost{CostPerCredit: 980000},
	})
	assert.Contains(t, buf.String(), curriculum.OutlookOnTrack)
	assert.Contains(t, buf.String(), "980000 per credit")

	buf.Reset()
	require.NoError(t, printJSON(&buf, l))
	assert.Contains(t, buf.String(), `"academic_records"`)
	assert.Contains(t, buf.String(), `"mssv": "21520001"`)

	buf.Reset()
	printRecommendation(&buf, curriculum.Recommendation{Graduation: []curriculum.Subject{{Code: "NT522"}}})
	assert.Contains(t, buf.String(), "Graduation:")
	assert.Contains(t, buf.String(), "NT522")
}

func TestRootHelp(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "curriculum")
	assert.Contains(t, buf.String(), "recommend")
}

func TestExplainSyncError(t *testing.T) {
	err := explainSyncError(fmt.Errorf("sync_ledger: %w", shared.ErrPortalTimeout))
	assert.ErrorIs(t, err, shared.ErrPortalTimeout)
	assert.Contains(t, err.Error(), "try again later")

	err = explainSyncError(shared.ErrPortalNotLoggedIn)
	assert.Equal(t, shared.ErrPortalNotLoggedIn, err)
}

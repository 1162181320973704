package store

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"ckryptbit/internal/domain/models"
)

func TestGenerateReportDeterministic(t *testing.T) {
	target := models.PentestTargetInfo{TargetURL: "https://example.com", TargetIP: "10.0.0.5"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := GenerateReport(target, "Perimeter Recon Scan", now)
	b := GenerateReport(target, "Perimeter Recon Scan", now)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same target produced different reports")
	}

	c := GenerateReport(models.PentestTargetInfo{TargetURL: "https://other.example"}, "Perimeter Recon Scan", now)
	if reflect.DeepEqual(a.Findings, c.Findings) && a.OverallRiskScore == c.OverallRiskScore {
		t.Fatal("different targets produced identical reports")
	}
}

func TestGenerateReportBounds(t *testing.T) {
	now := time.Now()
	for _, url := range []string{"https://a.example", "https://b.example", "", "https://c.example/deep/path"} {
		r := GenerateReport(models.PentestTargetInfo{TargetURL: url}, "Full Spectrum Pentest Simulation", now)
		if n := len(r.Findings); n < 2 || n > 5 {
			t.Errorf("target %q: %d findings, want 2..5", url, n)
		}
		if r.OverallRiskScore < 3 || r.OverallRiskScore > 9 {
			t.Errorf("target %q: risk score %d, want 3..9", url, r.OverallRiskScore)
		}
		if n := len(r.DefenseLogs); n < 1 || n > 2 {
			t.Errorf("target %q: %d defense logs, want 1..2", url, n)
		}
		if r.ExecutiveSummary == "" || r.Methodology == "" {
			t.Errorf("target %q: summary or methodology empty", url)
		}
	}
}

func TestRenderReportText(t *testing.T) {
	target := models.PentestTargetInfo{TargetURL: "https://example.com", ScopeNotes: "staging only"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := GenerateReport(target, "Perimeter Recon Scan", now)
	order := &models.PentestOrder{
		ID:          "p_ord_12345678abcd",
		ProductName: "Perimeter Recon Scan",
		Report:      report,
	}

	text := RenderReportText(report, order)
	for _, want := range []string{
		"SECURITY ASSESSMENT REPORT",
		"Projekt Ckryptbit",
		"Service: Perimeter Recon Scan",
		"Order ID: p_ord_12345678abcd",
		"Target: https://example.com",
		"Scope Notes: staging only",
		"EXECUTIVE SUMMARY",
		"KI ADAPTIVE DEFENSE SIMULATION LOGS",
		"METHODOLOGY NOTES",
		"END OF REPORT",
		"This is a simulated report for demonstration purposes.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
	if got := strings.Count(text, "Severity: "); got != len(report.Findings) {
		t.Errorf("rendered %d findings, report has %d", got, len(report.Findings))
	}
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		name  string
		order models.PentestOrder
		want  string
	}{
		{
			name: "url target",
			order: models.PentestOrder{
				ID: "p_ord_abcdef123",
				Report: &models.SecurityReport{
					TargetSummary: models.PentestTargetInfo{TargetURL: "https://example.com/app"},
				},
			},
			want: "Security_Report_ProjektCkryptbit_p_ord_ab_https_example_com_app.txt",
		},
		{
			name: "ip fallback",
			order: models.PentestOrder{
				ID: "p_ord_abcdef123",
				Report: &models.SecurityReport{
					TargetSummary: models.PentestTargetInfo{TargetIP: "10.0.0.5"},
				},
			},
			want: "Security_Report_ProjektCkryptbit_p_ord_ab_10_0_0_5.txt",
		},
		{
			name:  "no report",
			order: models.PentestOrder{ID: "short"},
			want:  "Security_Report_ProjektCkryptbit_short_UnknownTarget.txt",
		},
	}
	for _, tc := range tests {
		if got := ReportFileName(&tc.order); got != tc.want {
			t.Errorf("%s: ReportFileName = %q, want %q", tc.name, got, tc.want)
		}
	}
}

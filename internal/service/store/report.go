package store

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"ckryptbit/internal/domain/models"
)

// findingCatalog is the pool of fabricated findings a report draws from.
// Nothing here is real scan output.
var findingCatalog = []models.Finding{
	{
		Severity:       models.SeverityCritical,
		Title:          "SQL Injection in Login Endpoint",
		CWE:            "CWE-89",
		Description:    "The authentication endpoint concatenates user input into a SQL query, allowing full database read access.",
		Recommendation: "Use parameterized queries for every database access.",
		MitigationSteps: []string{
			"Replace string-built queries with prepared statements.",
			"Add input validation as defense in depth.",
			"Rotate database credentials.",
		},
		ExploitPath: []string{"Submit crafted username payload.", "Extract session table.", "Hijack administrator session."},
		Evidence:    "Simulated response time delta of 4.2s on boolean-blind probe.",
	},
	{
		Severity:       models.SeverityHigh,
		Title:          "Outdated TLS Configuration",
		CWE:            "CWE-327",
		Description:    "The perimeter accepts TLS 1.0 handshakes with weak cipher suites.",
		Recommendation: "Disable TLS versions below 1.2 and prune the cipher list.",
		MitigationSteps: []string{
			"Update the TLS termination config.",
			"Re-test with an SSL scanner.",
		},
	},
	{
		Severity:       models.SeverityHigh,
		Title:          "Exposed Administrative Interface",
		CWE:            "CWE-284",
		Description:    "An administration panel is reachable from the public internet without IP restriction.",
		Recommendation: "Restrict administrative surfaces to a VPN or allow-listed addresses.",
		ExploitPath:    []string{"Enumerate common admin paths.", "Brute-force weak credentials."},
	},
	{
		Severity:       models.SeverityMedium,
		Title:          "Missing Security Headers",
		CWE:            "CWE-693",
		Description:    "Responses lack Content-Security-Policy and X-Frame-Options headers.",
		Recommendation: "Add a strict CSP and frame-ancestors restrictions.",
	},
	{
		Severity:       models.SeverityMedium,
		Title:          "Verbose Error Messages",
		CWE:            "CWE-209",
		Description:    "Stack traces with framework versions leak in 500 responses.",
		Recommendation: "Return generic error pages and log details server-side only.",
	},
	{
		Severity:       models.SeverityLow,
		Title:          "Directory Listing Enabled",
		CWE:            "CWE-548",
		Description:    "Static asset directories expose their file listings.",
		Recommendation: "Disable autoindexing on the web server.",
	},
	{
		Severity:       models.SeverityInfo,
		Title:          "Server Banner Disclosure",
		Description:    "The web server announces its exact version in response headers.",
		Recommendation: "Suppress or genericize the Server header.",
	},
}

// defenseLogCatalog is the pool of fabricated adaptive-defense events.
var defenseLogCatalog = []models.DefenseLog{
	{
		Action:          "Anomaly throttling engaged",
		Detail:          "Request rate from the probe source exceeded the rolling baseline.",
		SimulatedEffect: "Scan slowed by a factor of 3.",
		Confidence:      "High",
	},
	{
		Action:          "Honeypot credential served",
		Detail:          "A decoy credential pair was returned to a suspected enumeration attempt.",
		SimulatedEffect: "Attacker session flagged and traced.",
		Confidence:      "Medium",
	},
	{
		Action:          "Perimeter rule auto-tightened",
		Detail:          "Firewall rules narrowed for the scanning address range.",
		SimulatedEffect: "Follow-up probes dropped silently.",
		Confidence:      "High",
	},
}

// GenerateReport fabricates a security report for the order. The target
// info seeds the selection, so the same target always yields the same
// findings.
func GenerateReport(target models.PentestTargetInfo, productName string, now time.Time) *models.SecurityReport {
	seed := fnv.New64a()
	seed.Write([]byte(target.TargetURL))
	seed.Write([]byte(target.TargetIP))
	seed.Write([]byte(productName))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	count := 2 + rng.Intn(4)
	perm := rng.Perm(len(findingCatalog))
	findings := make([]models.Finding, 0, count)
	for _, idx := range perm[:count] {
		findings = append(findings, findingCatalog[idx])
	}

	score := 3 + rng.Intn(7)
	targetLabel := target.TargetURL
	if targetLabel == "" {
		targetLabel = target.TargetIP
	}
	if targetLabel == "" {
		targetLabel = "the designated scope"
	}

	var logs []models.DefenseLog
	for _, idx := range rng.Perm(len(defenseLogCatalog))[:1+rng.Intn(2)] {
		logs = append(logs, defenseLogCatalog[idx])
	}

	return &models.SecurityReport{
		TargetSummary: target,
		GeneratedDate: now,
		ExecutiveSummary: fmt.Sprintf(
			"A simulated assessment of %s surfaced %d notable findings with an overall risk of %d/10. "+
				"Remediation priorities are listed below in severity order. This output is fabricated for demonstration purposes.",
			targetLabel, len(findings), score),
		OverallRiskScore: score,
		Findings:         findings,
		DefenseLogs:      logs,
		Methodology:      "Simulated black-box perimeter scan followed by scripted exploit and adaptive-defense modeling.",
	}
}

// RenderReportText flattens a report into the plain-text deliverable.
func RenderReportText(report *models.SecurityReport, order *models.PentestOrder) string {
	var b strings.Builder

	b.WriteString("**********************************************\n")
	b.WriteString("    SECURITY ASSESSMENT REPORT\n")
	b.WriteString("    Projekt Ckryptbit\n")
	b.WriteString("**********************************************\n\n")

	target := report.TargetSummary.TargetURL
	if target == "" {
		target = report.TargetSummary.TargetIP
	}
	if target == "" {
		target = "N/A"
	}
	fmt.Fprintf(&b, "Service: %s\n", order.ProductName)
	fmt.Fprintf(&b, "Order ID: %s\n", order.ID)
	fmt.Fprintf(&b, "Target: %s\n", target)
	if report.TargetSummary.ScopeNotes != "" {
		fmt.Fprintf(&b, "Scope Notes: %s\n", report.TargetSummary.ScopeNotes)
	}
	fmt.Fprintf(&b, "Report Generated: %s\n", report.GeneratedDate.Format(time.RFC1123))
	fmt.Fprintf(&b, "Overall Risk (Simulated): %d/10\n\n", report.OverallRiskScore)

	b.WriteString("----------------------------------------------\n")
	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString("----------------------------------------------\n")
	b.WriteString(report.ExecutiveSummary)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "----------------------------------------------\nFINDINGS (%d)\n----------------------------------------------\n\n", len(report.Findings))
	if len(report.Findings) == 0 {
		b.WriteString("No significant vulnerabilities identified in this simulated scan.\n\n--------------------\n\n")
	}
	for _, f := range report.Findings {
		renderFinding(&b, f)
		b.WriteString("\n--------------------\n\n")
	}

	if len(report.DefenseLogs) > 0 {
		b.WriteString("----------------------------------------------\nKI ADAPTIVE DEFENSE SIMULATION LOGS\n----------------------------------------------\n")
		for _, l := range report.DefenseLogs {
			fmt.Fprintf(&b, "Action: %s\n", l.Action)
			fmt.Fprintf(&b, "Detail: %s\n", l.Detail)
			fmt.Fprintf(&b, "Simulated Effect: %s\n", l.SimulatedEffect)
			fmt.Fprintf(&b, "Confidence: %s\n\n", l.Confidence)
		}
		b.WriteString("--------------------\n\n")
	}

	if report.Methodology != "" {
		fmt.Fprintf(&b, "----------------------------------------------\nMETHODOLOGY NOTES\n----------------------------------------------\n%s\n\n", report.Methodology)
	}

	b.WriteString("**********************************************\n")
	b.WriteString("    END OF REPORT\n")
	b.WriteString("    This is a simulated report for demonstration purposes.\n")
	b.WriteString("**********************************************")
	return b.String()
}

func renderFinding(b *strings.Builder, f models.Finding) {
	fmt.Fprintf(b, "Severity: %s\n", f.Severity)
	fmt.Fprintf(b, "Title: %s\n", f.Title)
	if f.CWE != "" {
		fmt.Fprintf(b, "CWE: %s\n", f.CWE)
	}
	fmt.Fprintf(b, "Description:\n%s\n", f.Description)
	if f.Recommendation != "" {
		fmt.Fprintf(b, "Recommendation Protocol:\n%s\n", f.Recommendation)
	}
	if len(f.MitigationSteps) > 0 {
		b.WriteString("Simulated Mitigation Steps:\n")
		for i, step := range f.MitigationSteps {
			fmt.Fprintf(b, "%d. %s\n", i+1, step)
		}
	}
	if len(f.ExploitPath) > 0 {
		b.WriteString("Simulated Exploit Path:\n")
		for i, step := range f.ExploitPath {
			fmt.Fprintf(b, "%d. %s\n", i+1, step)
		}
	}
	if f.Evidence != "" {
		fmt.Fprintf(b, "Simulated Evidence:\n%s\n", f.Evidence)
	}
}

var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ReportFileName names the text deliverable after the order and target.
func ReportFileName(order *models.PentestOrder) string {
	target := "UnknownTarget"
	if order.Report != nil {
		if t := order.Report.TargetSummary.TargetURL; t != "" {
			target = t
		} else if t := order.Report.TargetSummary.TargetIP; t != "" {
			target = t
		}
	}
	target = nonAlnumRe.ReplaceAllString(target, "_")

	id := order.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Security_Report_ProjektCkryptbit_%s_%s.txt", id, target)
}

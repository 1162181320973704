package models

import "time"

// User is the no-op identity stub. There are no credentials; "admin" and
// "root" usernames get the admin flag.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ProductType distinguishes scripted pentest services from generated
// digital assets.
type ProductType string

const (
	ProductService ProductType = "service"
	ProductDigital ProductType = "digital"
)

// ServiceConfig configures a pentest service product.
type ServiceConfig struct {
	RequiresTargetInfo bool `json:"requires_target_info"`
}

// DigitalAssetConfig configures an AI-generated digital product.
type DigitalAssetConfig struct {
	GenerationPrompt string `json:"generation_prompt"`
	OutputFormat     string `json:"output_format"` // "text" or "markdown"
}

// Product is a catalog entry.
type Product struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Price              float64             `json:"price"`
	ImageURL           string              `json:"image_url,omitempty"`
	ProductType        ProductType         `json:"product_type"`
	ServiceConfig      *ServiceConfig      `json:"service_config,omitempty"`
	DigitalAssetConfig *DigitalAssetConfig `json:"digital_asset_config,omitempty"`
}

// CartItem is one line of an in-memory cart.
type CartItem struct {
	ProductID   string      `json:"product_id"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Quantity    int         `json:"quantity"`
	ProductType ProductType `json:"product_type"`
}

// PentestStatus is one step of the scripted order lifecycle.
type PentestStatus string

const (
	StatusAwaitingTargetInfo       PentestStatus = "Awaiting Target Info"
	StatusProcessingRequest        PentestStatus = "Processing Request"
	StatusScanningPerimeter        PentestStatus = "Scanning Perimeter"
	StatusAnalyzingVulnerabilities PentestStatus = "Analyzing Vulnerabilities"
	StatusSimulatingExploits       PentestStatus = "Simulating Exploits"
	StatusCompilingResults         PentestStatus = "Compiling Results"
	StatusReportReady              PentestStatus = "Report Ready"
	StatusCompleted                PentestStatus = "Completed"
)

// PentestTargetInfo is the user-supplied scope for a simulated assessment.
type PentestTargetInfo struct {
	TargetURL  string `json:"target_url,omitempty"`
	TargetIP   string `json:"target_ip,omitempty"`
	ScopeNotes string `json:"scope_notes,omitempty"`
}

// CustomerFeedback is a rating left on a delivered report.
type CustomerFeedback struct {
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// PentestOrder tracks one simulated assessment from acquisition to report.
// Admin-update and notification timestamps stay ISO-8601 strings end to end,
// matching how they persist.
type PentestOrder struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Username          string             `json:"username"`
	ProductID         string             `json:"product_id"`
	ProductName       string             `json:"product_name"`
	OrderDate         time.Time          `json:"order_date"`
	TargetInfo        *PentestTargetInfo `json:"target_info,omitempty"`
	Status            PentestStatus      `json:"status"`
	Report            *SecurityReport    `json:"report,omitempty"`
	AdminNotes        string             `json:"admin_notes,omitempty"`
	LastAdminUpdateAt string             `json:"last_admin_update_at,omitempty"`
	CustomerNotified  bool               `json:"customer_notified"`
	LastNotifiedAt    string             `json:"last_notified_at,omitempty"`
	Feedback          *CustomerFeedback  `json:"feedback,omitempty"`
}

// FindingSeverity grades a simulated finding.
type FindingSeverity string

const (
	SeverityCritical FindingSeverity = "Critical"
	SeverityHigh     FindingSeverity = "High"
	SeverityMedium   FindingSeverity = "Medium"
	SeverityLow      FindingSeverity = "Low"
	SeverityInfo     FindingSeverity = "Informational"
)

// Finding is one simulated vulnerability in a mock report.
type Finding struct {
	Severity        FindingSeverity `json:"severity"`
	Title           string          `json:"title"`
	CWE             string          `json:"cwe,omitempty"`
	Description     string          `json:"description"`
	Recommendation  string          `json:"recommendation,omitempty"`
	MitigationSteps []string        `json:"mitigation_steps,omitempty"`
	ExploitPath     []string        `json:"exploit_path,omitempty"`
	Evidence        string          `json:"evidence,omitempty"`
}

// DefenseLog is a simulated adaptive-defense event in a mock report.
type DefenseLog struct {
	Action          string `json:"action"`
	Detail          string `json:"detail"`
	SimulatedEffect string `json:"simulated_effect"`
	Confidence      string `json:"confidence"`
}

// SecurityReport is the scripted deliverable of a pentest order. No real
// scanning happens anywhere; every field is fabricated.
type SecurityReport struct {
	TargetSummary    PentestTargetInfo `json:"target_summary"`
	GeneratedDate    time.Time         `json:"generated_date"`
	ExecutiveSummary string            `json:"executive_summary"`
	OverallRiskScore int               `json:"overall_risk_score"`
	Findings         []Finding         `json:"findings"`
	DefenseLogs      []DefenseLog      `json:"defense_logs,omitempty"`
	Methodology      string            `json:"methodology,omitempty"`
}

// AssetStatus is the lifecycle of a generated digital asset.
type AssetStatus string

const (
	AssetPending   AssetStatus = "pending"
	AssetCompleted AssetStatus = "completed"
	AssetFailed    AssetStatus = "failed"
)

// AcquiredDigitalAsset is a purchased digital product whose content is
// generated asynchronously, one independent task per item.
type AcquiredDigitalAsset struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	Username         string      `json:"username"`
	ProductID        string      `json:"product_id"`
	ProductName      string      `json:"product_name"`
	PurchaseDate     time.Time   `json:"purchase_date"`
	GeneratedContent string      `json:"generated_content,omitempty"`
	ContentFormat    string      `json:"content_format"`
	OriginalPrompt   string      `json:"original_prompt"`
	GenerationStatus AssetStatus `json:"generation_status"`
	GenerationError  string      `json:"generation_error,omitempty"`
}

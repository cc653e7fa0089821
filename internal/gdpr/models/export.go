package models

import (
	"time"

	profilemodels "fooddrop/internal/profile/models"
	audit "fooddrop/pkg/platform/audit"
)

// ExportVersion is the export document format version.
const ExportVersion = "1.0"

// Export categories, in the order they appear in metadata.dataTypes.
const (
	DataProfile     = "profile"
	DataCollections = "collections"
	DataPreferences = "preferences"
	DataAnalytics   = "analytics"
	DataAuditLogs   = "auditLogs"
)

// DataTypeOrder lists export categories in output order.
var DataTypeOrder = []string{DataProfile, DataCollections, DataPreferences, DataAnalytics, DataAuditLogs}

// Replacement values for redacted audit fields.
const (
	RedactedIPAddress = "***.***.***.**"
	RedactedUserAgent = "[User Agent Removed for Privacy]"
)

type ExportOptions struct {
	IncludeProfile     bool         `json:"includeProfile"`
	IncludeCollections bool         `json:"includeCollections"`
	IncludePreferences bool         `json:"includePreferences"`
	IncludeAnalytics   bool         `json:"includeAnalytics"`
	IncludeAuditLogs   bool         `json:"includeAuditLogs"`
	Format             ExportFormat `json:"format"`
}

// Requested returns the flagged categories in output order.
func (o ExportOptions) Requested() []string {
	flags := map[string]bool{
		DataProfile:     o.IncludeProfile,
		DataCollections: o.IncludeCollections,
		DataPreferences: o.IncludePreferences,
		DataAnalytics:   o.IncludeAnalytics,
		DataAuditLogs:   o.IncludeAuditLogs,
	}
	var out []string
	for _, t := range DataTypeOrder {
		if flags[t] {
			out = append(out, t)
		}
	}
	return out
}

type ExportMetadata struct {
	ExportDate time.Time `json:"exportDate"`
	UserID     string    `json:"userId"`
	Version    string    `json:"version"`
	DataTypes  []string  `json:"dataTypes"`
	// Incomplete names categories whose fetch failed.
	Incomplete []string `json:"incomplete,omitempty"`
}

type ExportPreferences struct {
	UserPreferences profilemodels.Preferences `json:"userPreferences"`
	GDPRConsent     profilemodels.Consent     `json:"gdprConsent"`
	ConsentHistory  []*ConsentRecord          `json:"consentHistory,omitempty"`
}

// UserDataExport holds only the categories that were requested and fetched.
type UserDataExport struct {
	Metadata    ExportMetadata                  `json:"metadata"`
	Profile     *profilemodels.Profile          `json:"profile,omitempty"`
	Collections []*profilemodels.CollectionItem `json:"collections,omitempty"`
	Preferences *ExportPreferences              `json:"preferences,omitempty"`
	Analytics   []audit.PerformanceMetric       `json:"analytics,omitempty"`
	AuditLogs   []audit.Entry                   `json:"auditLogs,omitempty"`
}

// ExportResult is returned by RequestExport.
type ExportResult struct {
	RequestID string          `json:"requestId"`
	Status    ExportStatus    `json:"status"`
	Export    *UserDataExport `json:"export"`
}

// ComplianceReport is a read-only assessment of a stored profile.
type ComplianceReport struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
}

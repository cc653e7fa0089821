package service_test

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddrop/internal/gdpr/models"
	"fooddrop/internal/gdpr/service"
	profilemodels "fooddrop/internal/profile/models"
	audit "fooddrop/pkg/platform/audit"
)

func TestFormatDataAsCSV(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	export := &models.UserDataExport{
		Metadata: models.ExportMetadata{
			ExportDate: at,
			UserID:     "u1",
			Version:    models.ExportVersion,
			DataTypes:  []string{models.DataCollections, models.DataPreferences, models.DataAuditLogs},
		},
		Collections: []*profilemodels.CollectionItem{{
			ID:          "c1",
			UserID:      "u1",
			FoodItemID:  "apple",
			Method:      profilemodels.MethodScan,
			CollectedAt: at,
			Notes:       `crunchy, "red"`,
		}},
		Preferences: &models.ExportPreferences{
			UserPreferences: profilemodels.DefaultPreferences(),
			GDPRConsent:     profilemodels.Consent{Given: true, Timestamp: at, Version: "1.0"},
		},
		AuditLogs: []audit.Entry{{
			ID:        "a1",
			UserID:    "u1",
			Action:    audit.ActionLogin,
			Timestamp: at,
			Details: map[string]any{
				"userAgent":   models.RedactedUserAgent,
				"loginMethod": "email",
			},
			IPAddress: models.RedactedIPAddress,
			SessionID: "s1",
			Category:  audit.CategorySecurity,
		}},
	}

	csv, err := service.FormatDataAsCSV(export)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "export_csv", []byte(csv))
}

func TestFormatDataAsCSVEmptyExport(t *testing.T) {
	csv, err := service.FormatDataAsCSV(&models.UserDataExport{
		Metadata: models.ExportMetadata{UserID: "u1", Version: models.ExportVersion, DataTypes: []string{}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Data Type,Field,Value\n", csv)
}

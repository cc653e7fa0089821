package service

import (
	"maps"
	"sync"

	"github.com/goliatone/go-masker"

	"fooddrop/internal/gdpr/models"
	audit "fooddrop/pkg/platform/audit"
)

// sensitiveDetailKeys are masked wherever they appear in exported details.
var sensitiveDetailKeys = []string{"confirmationCode", "token", "password", "secret", "authorization"}

var (
	maskerOnce   sync.Once
	detailMasker *masker.Masker
)

func exportMasker() *masker.Masker {
	maskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		for _, key := range sensitiveDetailKeys {
			masker.Default.RegisterMaskField(key, "filled4")
		}
		detailMasker = masker.Default
	})
	return detailMasker
}

// userAgentDetailKeys hold the raw user agent or values derived from it.
var userAgentDetailKeys = []string{"device"}

// redactEntries strips network origin and user agent from audit entries
// before they leave the system, and masks sensitive detail keys.
func redactEntries(entries []audit.Entry) []audit.Entry {
	out := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		e.IPAddress = models.RedactedIPAddress
		e.Details = maskDetails(e.Details)
		for _, key := range userAgentDetailKeys {
			delete(e.Details, key)
		}
		e.Details["userAgent"] = models.RedactedUserAgent
		out = append(out, e)
	}
	return out
}

func maskDetails(details map[string]any) map[string]any {
	cloned := maps.Clone(details)
	if cloned == nil {
		return map[string]any{}
	}
	m := exportMasker()
	if m == nil {
		return cloned
	}
	masked, err := m.Mask(cloned)
	if err != nil {
		return map[string]any{}
	}
	if out, ok := masked.(map[string]any); ok {
		return out
	}
	return map[string]any{}
}

package models

import (
	"time"

	profilemodels "fooddrop/internal/profile/models"
	"fooddrop/internal/validation"
)

// ConsentRecord is one entry of the append-only consent history.
type ConsentRecord struct {
	ID                string                          `json:"id,omitempty"`
	UserID            string                          `json:"userId"`
	Given             bool                            `json:"given"`
	Version           string                          `json:"version"`
	CookiePreferences profilemodels.CookiePreferences `json:"cookiePreferences"`
	MarketingEmails   bool                            `json:"marketingEmails"`
	Timestamp         time.Time                       `json:"timestamp"`
	IPAddress         string                          `json:"ipAddress,omitempty"`
}

// ConsentInput is a consent decision submitted by the user.
type ConsentInput struct {
	Given             bool                            `json:"given"`
	Version           string                          `json:"version"`
	CookiePreferences profilemodels.CookiePreferences `json:"cookiePreferences"`
	MarketingEmails   bool                            `json:"marketingEmails"`
}

var ConsentInputRules = []validation.Rule{
	validation.RequiredField("given", validation.TypeBoolean),
	validation.RequiredField("version", validation.TypeString, validation.MinLength(1), validation.MaxLength(20)),
	validation.RequiredField("cookiePreferences.necessary", validation.TypeBoolean,
		validation.OneOf(true)),
	validation.Field("cookiePreferences.analytics", validation.TypeBoolean),
	validation.Field("cookiePreferences.marketing", validation.TypeBoolean),
}

// DeletionReasonRules bound the free-text reason on a deletion request.
var DeletionReasonRules = []validation.Rule{
	validation.Field("reason", validation.TypeString, validation.MaxLength(500)),
}

package models

import (
	"slices"
	"strings"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type SubscriptionStatus string

const (
	SubscriptionNone      SubscriptionStatus = "none"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// ConsentVersion is the privacy policy version recorded at registration.
const ConsentVersion = "1.0"

// ProtectedFields can only be set when the profile is created.
var ProtectedFields = []string{"uid", "createdAt", "gdprConsent"}

type CookiePreferences struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

type Preferences struct {
	EmailNotifications    bool              `json:"emailNotifications"`
	Theme                 Theme             `json:"theme"`
	Language              string            `json:"language"`
	MarketingEmails       bool              `json:"marketingEmails"`
	DataProcessingConsent bool              `json:"dataProcessingConsent"`
	CookiePreferences     CookiePreferences `json:"cookiePreferences"`
}

// DefaultPreferences are applied to new profiles.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications:    true,
		Theme:                 ThemeLight,
		Language:              "en",
		MarketingEmails:       false,
		DataProcessingConsent: true,
		CookiePreferences:     CookiePreferences{Necessary: true},
	}
}

type Stats struct {
	TotalItemsCollected  int        `json:"totalItemsCollected"`
	CompletedCollections int        `json:"completedCollections"`
	JoinDate             time.Time  `json:"joinDate"`
	LoginDays            int        `json:"loginDays"`
	StreakDays           int        `json:"streakDays"`
	LastCollectedAt      *time.Time `json:"lastCollectedAt,omitempty"`
}

// Consent is the GDPR consent captured at registration.
type Consent struct {
	Given     bool      `json:"given"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

// Profile is a user's stored profile.
//
// Invariants:
//   - UID, CreatedAt and GDPRConsent never change after creation
//   - DeletionRequested and DeletionScheduledFor are set together
type Profile struct {
	UID                  string             `json:"uid"`
	Email                string             `json:"email"`
	DisplayName          *string            `json:"displayName"`
	EmailVerified        bool               `json:"emailVerified"`
	CreatedAt            time.Time          `json:"createdAt"`
	LastLoginAt          time.Time          `json:"lastLoginAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
	Preferences          Preferences        `json:"preferences"`
	Stats                Stats              `json:"stats"`
	SubscriptionStatus   SubscriptionStatus `json:"subscriptionStatus"`
	GDPRConsent          Consent            `json:"gdprConsent"`
	DeletionRequested    bool               `json:"deletionRequested,omitempty"`
	DeletionScheduledFor *time.Time         `json:"deletionScheduledFor,omitempty"`
}

// NewProfile builds a first-login profile with default preferences, zeroed
// stats and consent given at now.
func NewProfile(uid, email, displayName string, emailVerified bool, now time.Time, ipAddress string) *Profile {
	var name *string
	if trimmed := strings.TrimSpace(displayName); trimmed != "" {
		name = &trimmed
	}
	return &Profile{
		UID:           uid,
		Email:         email,
		DisplayName:   name,
		EmailVerified: emailVerified,
		CreatedAt:     now,
		LastLoginAt:   now,
		UpdatedAt:     now,
		Preferences:   DefaultPreferences(),
		Stats: Stats{
			JoinDate:   now,
			LoginDays:  1,
			StreakDays: 1,
		},
		SubscriptionStatus: SubscriptionNone,
		GDPRConsent: Consent{
			Given:     true,
			Timestamp: now,
			Version:   ConsentVersion,
			IPAddress: ipAddress,
		},
	}
}

// IsArchived reports whether deletion has been scheduled.
func (p *Profile) IsArchived() bool {
	return p.DeletionRequested
}

// ProtectedIn returns the protected fields addressed by the update keys,
// sorted. Dotted keys address their top-level field.
func ProtectedIn(keys []string) []string {
	var hits []string
	for _, key := range keys {
		top, _, _ := strings.Cut(key, ".")
		if slices.Contains(ProtectedFields, top) && !slices.Contains(hits, top) {
			hits = append(hits, top)
		}
	}
	slices.Sort(hits)
	return hits
}

// PreferencesPatch carries a partial preferences update.
type PreferencesPatch struct {
	EmailNotifications    *bool              `json:"emailNotifications,omitempty"`
	Theme                 *Theme             `json:"theme,omitempty"`
	Language              *string            `json:"language,omitempty"`
	MarketingEmails       *bool              `json:"marketingEmails,omitempty"`
	DataProcessingConsent *bool              `json:"dataProcessingConsent,omitempty"`
	CookiePreferences     *CookiePreferences `json:"cookiePreferences,omitempty"`
}

func (p PreferencesPatch) IsEmpty() bool {
	return p == PreferencesPatch{}
}

// Apply returns prefs with the patch's set fields applied.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.EmailNotifications != nil {
		prefs.EmailNotifications = *p.EmailNotifications
	}
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.Language != nil {
		prefs.Language = *p.Language
	}
	if p.MarketingEmails != nil {
		prefs.MarketingEmails = *p.MarketingEmails
	}
	if p.DataProcessingConsent != nil {
		prefs.DataProcessingConsent = *p.DataProcessingConsent
	}
	if p.CookiePreferences != nil {
		prefs.CookiePreferences = *p.CookiePreferences
	}
	return prefs
}

// StatsPatch carries a partial stats update.
type StatsPatch struct {
	TotalItemsCollected  *int `json:"totalItemsCollected,omitempty"`
	CompletedCollections *int `json:"completedCollections,omitempty"`
	LoginDays            *int `json:"loginDays,omitempty"`
	StreakDays           *int `json:"streakDays,omitempty"`
}

func (p StatsPatch) IsEmpty() bool {
	return p == StatsPatch{}
}

func (p StatsPatch) Apply(stats Stats) Stats {
	if p.TotalItemsCollected != nil {
		stats.TotalItemsCollected = *p.TotalItemsCollected
	}
	if p.CompletedCollections != nil {
		stats.CompletedCollections = *p.CompletedCollections
	}
	if p.LoginDays != nil {
		stats.LoginDays = *p.LoginDays
	}
	if p.StreakDays != nil {
		stats.StreakDays = *p.StreakDays
	}
	return stats
}

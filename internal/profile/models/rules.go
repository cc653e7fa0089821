package models

import "fooddrop/internal/validation"

// ProfileRules validate a whole stored profile.
var ProfileRules = []validation.Rule{
	validation.RequiredField("uid", validation.TypeString, validation.MinLength(1), validation.MaxLength(128)),
	validation.RequiredField("email", validation.TypeString, validation.Pattern(validation.EmailPattern), validation.MaxLength(254)),
	validation.Field("displayName", validation.TypeString, validation.MaxLength(50)),
	validation.RequiredField("emailVerified", validation.TypeBoolean),
	validation.RequiredField("createdAt", validation.TypeTimestamp),
	validation.RequiredField("preferences", validation.TypeObject),
	validation.RequiredField("preferences.theme", validation.TypeString, validation.OneOf(string(ThemeLight), string(ThemeDark))),
	validation.RequiredField("preferences.language", validation.TypeString, validation.Pattern(`^[a-z]{2}(-[A-Z]{2})?$`)),
	validation.Field("preferences.emailNotifications", validation.TypeBoolean),
	validation.Field("preferences.marketingEmails", validation.TypeBoolean),
	validation.Field("preferences.dataProcessingConsent", validation.TypeBoolean),
	validation.Field("preferences.cookiePreferences", validation.TypeObject,
		validation.Custom("necessaryCookies", necessaryCookiesEnabled, "necessary cookies cannot be disabled")),
	validation.RequiredField("stats", validation.TypeObject),
	validation.Field("stats.totalItemsCollected", validation.TypeNumber, validation.Min(0)),
	validation.Field("stats.completedCollections", validation.TypeNumber, validation.Min(0)),
	validation.Field("stats.loginDays", validation.TypeNumber, validation.Min(0)),
	validation.Field("stats.streakDays", validation.TypeNumber, validation.Min(0)),
	validation.RequiredField("subscriptionStatus", validation.TypeString,
		validation.OneOf(string(SubscriptionNone), string(SubscriptionActive), string(SubscriptionCancelled), string(SubscriptionExpired))),
	validation.RequiredField("gdprConsent", validation.TypeObject),
	validation.RequiredField("gdprConsent.given", validation.TypeBoolean),
	validation.RequiredField("gdprConsent.version", validation.TypeString, validation.MinLength(1)),
}

// CollectionItemRules validate a collection item before it is appended.
var CollectionItemRules = []validation.Rule{
	validation.RequiredField("userId", validation.TypeString, validation.MinLength(1)),
	validation.RequiredField("foodItemId", validation.TypeString, validation.MinLength(1), validation.MaxLength(100)),
	validation.RequiredField("method", validation.TypeString,
		validation.OneOf(string(MethodScan), string(MethodDiscover), string(MethodQuiz), string(MethodGift))),
	validation.RequiredField("collectedAt", validation.TypeTimestamp),
	validation.Field("notes", validation.TypeString, validation.MaxLength(500)),
}

// DisplayNameRules validate a display name change on its own.
var DisplayNameRules = []validation.Rule{
	validation.Field("displayName", validation.TypeString, validation.MaxLength(50)),
}

func necessaryCookiesEnabled(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	necessary, _ := m["necessary"].(bool)
	return necessary
}

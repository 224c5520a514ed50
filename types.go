package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies one of the two persisted refresh-settings records.
type Kind string

const (
	// KindAdmin is the global administrator record.
	KindAdmin Kind = "admin"
	// KindUser is the per-user preference record.
	KindUser Kind = "user"
)

// Role classifies an authenticated user for UI gating purposes. The role is
// trusted as supplied; it is a convenience, not an authorization boundary.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity carries the externally-supplied authenticated-user context.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity carries the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// AdminSettings is the global administrator record controlling default
// refresh behaviour and override permissions.
type AdminSettings struct {
	// DefaultRefreshSeconds applies to every user without an honored
	// override. Zero means no automatic refresh.
	DefaultRefreshSeconds int `json:"default_refresh_seconds"`
	// AllowUserOverride gates whether the per-user preference is honored.
	AllowUserOverride bool `json:"allow_user_override"`
	// MinRefreshSeconds is the floor enforced on any honored override.
	// Always positive; normalization clamps stored values up to 1.
	MinRefreshSeconds int `json:"min_refresh_seconds"`
	// DisabledPages lists page identifiers where auto-refresh is suppressed.
	DisabledPages []string `json:"disabled_pages,omitempty"`
	// PageRules holds optional boolean expressions evaluated against a page
	// context; any rule that evaluates true suppresses auto-refresh there.
	PageRules []string `json:"page_rules,omitempty"`
}

// DefaultAdminSettings returns the built-in administrator record used when
// storage holds nothing, or only a partial record.
func DefaultAdminSettings() AdminSettings {
	return AdminSettings{
		DefaultRefreshSeconds: 300,
		AllowUserOverride:     true,
		MinRefreshSeconds:     30,
	}
}

// Validate rejects records that could not have been produced through the
// settings UI flow.
func (s AdminSettings) Validate() error {
	if s.DefaultRefreshSeconds < 0 {
		return fmt.Errorf("settings: default_refresh_seconds must not be negative, got %d", s.DefaultRefreshSeconds)
	}
	if s.MinRefreshSeconds < 1 {
		return fmt.Errorf("settings: min_refresh_seconds must be positive, got %d", s.MinRefreshSeconds)
	}
	return nil
}

// PageDisabled reports whether page appears in DisabledPages.
func (s AdminSettings) PageDisabled(page string) bool {
	for _, disabled := range s.DisabledPages {
		if disabled == page {
			return true
		}
	}
	return false
}

// clone returns a copy of s with detached slices.
func (s AdminSettings) clone() AdminSettings {
	out := s
	if s.DisabledPages != nil {
		out.DisabledPages = append([]string(nil), s.DisabledPages...)
	}
	if s.PageRules != nil {
		out.PageRules = append([]string(nil), s.PageRules...)
	}
	return out
}

// normalized repairs values that arrived from storage rather than through
// Validate: negative defaults drop to zero and the minimum floor is clamped
// up to 1 so it can never be meaningless.
func (s AdminSettings) normalized() AdminSettings {
	out := s.clone()
	if out.DefaultRefreshSeconds < 0 {
		out.DefaultRefreshSeconds = 0
	}
	if out.MinRefreshSeconds < 1 {
		out.MinRefreshSeconds = 1
	}
	return out
}

// UserSettings is the per-user preference record.
type UserSettings struct {
	Refresh Preference `json:"my_refresh_seconds"`
}

// Preference is a tagged choice between deferring to the administrator
// default and an explicit per-user refresh interval. The zero value defers.
// On the wire it serializes as an integer, or null when deferring, matching
// the persisted record format.
type Preference struct {
	seconds int
	set     bool
}

// DeferToAdmin returns the preference that defers to the admin default.
func DeferToAdmin() Preference {
	return Preference{}
}

// Every returns an explicit preference of the given interval. Negative
// inputs are clamped to zero ("manual only").
func Every(seconds int) Preference {
	if seconds < 0 {
		seconds = 0
	}
	return Preference{seconds: seconds, set: true}
}

// IsDefault reports whether the preference defers to the admin default.
func (p Preference) IsDefault() bool {
	return !p.set
}

// Seconds returns the explicit interval; ok is false when deferring.
func (p Preference) Seconds() (seconds int, ok bool) {
	if !p.set {
		return 0, false
	}
	return p.seconds, true
}

// MarshalJSON encodes the preference as an integer or null.
func (p Preference) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.seconds)
}

// UnmarshalJSON accepts an integer or null. Anything else is malformed and
// surfaces to the loader, which degrades to the deferring preference.
func (p *Preference) UnmarshalJSON(payload []byte) error {
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		*p = Preference{}
		return nil
	}
	var seconds int
	if err := json.Unmarshal(payload, &seconds); err != nil {
		return err
	}
	*p = Every(seconds)
	return nil
}

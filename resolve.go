package settings

// Source identifies which branch of the resolution rule produced the
// effective refresh interval.
type Source string

const (
	// SourceAdminDefault means the admin default applied, either because
	// overrides are disallowed or because the user defers.
	SourceAdminDefault Source = "admin-default"
	// SourceUserOverride means the user preference was honored as stored.
	SourceUserOverride Source = "user-override"
	// SourceMinFloor means the user preference was honored but clamped up to
	// the administrator minimum.
	SourceMinFloor Source = "min-floor"
)

// Resolution pairs the effective refresh interval with the provenance of the
// value, so callers can show why a preference did or did not apply.
type Resolution struct {
	Seconds int
	Source  Source
}

// Resolve combines the administrator record and the user preference into the
// single effective refresh interval, in seconds. Zero means no automatic
// refresh. The function is pure: it is safe to call synchronously during
// render and again after a change notification.
//
// When overrides are allowed and the user holds an explicit preference, the
// result is the preference clamped up to the administrator minimum. In every
// other case the administrator default applies. A stored preference that is
// bypassed because overrides are disallowed is never cleared, only ignored,
// so re-enabling overrides restores it.
func Resolve(admin AdminSettings, user UserSettings) int {
	return Explain(admin, user).Seconds
}

// Explain resolves like Resolve and additionally reports which branch won.
// An explicit "manual only" preference of zero is clamped up to the minimum
// like any other override; Explain makes that clamp observable.
func Explain(admin AdminSettings, user UserSettings) Resolution {
	admin = admin.normalized()
	if admin.AllowUserOverride {
		if seconds, ok := user.Refresh.Seconds(); ok {
			if seconds < admin.MinRefreshSeconds {
				return Resolution{Seconds: admin.MinRefreshSeconds, Source: SourceMinFloor}
			}
			return Resolution{Seconds: seconds, Source: SourceUserOverride}
		}
	}
	return Resolution{Seconds: admin.DefaultRefreshSeconds, Source: SourceAdminDefault}
}

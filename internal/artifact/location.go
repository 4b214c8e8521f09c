package artifact

import (
	"fmt"
	"strings"
)

// LocationKind distinguishes the storage-location variants.
type LocationKind string

const (
	// KindDefault is the app-private internal directory.
	KindDefault LocationKind = "default"
	// KindExternal is a capability-scoped reference resolved by an ExternalResolver.
	KindExternal LocationKind = "external"
	// KindPath is an explicit filesystem directory.
	KindPath LocationKind = "path"
)

// DefaultSetting is the persisted form of the default location.
const DefaultSetting = "default_internal"

// Location is a storage-location setting.
type Location struct {
	Kind  LocationKind
	Value string
}

// DefaultLocation returns the internal storage location.
func DefaultLocation() Location {
	return Location{Kind: KindDefault}
}

// ParseLocation reads the persisted string form: "" or "default_internal" is
// the default, any "scheme://..." value is an external reference, everything
// else is a path.
func ParseLocation(setting string) Location {
	setting = strings.TrimSpace(setting)
	switch {
	case setting == "" || setting == DefaultSetting:
		return DefaultLocation()
	case strings.Contains(setting, "://"):
		return Location{Kind: KindExternal, Value: setting}
	default:
		return Location{Kind: KindPath, Value: setting}
	}
}

// String returns the persisted form.
func (l Location) String() string {
	if l.Kind == KindDefault || l.Kind == "" {
		return DefaultSetting
	}
	return l.Value
}

// Equal compares two settings by their persisted form.
func (l Location) Equal(other Location) bool {
	return l.String() == other.String()
}

// Describe renders the location for display.
func (l Location) Describe() string {
	switch l.Kind {
	case KindExternal:
		return fmt.Sprintf("external: %s", l.Value)
	case KindPath:
		return fmt.Sprintf("custom: %s", l.Value)
	default:
		return "default"
	}
}

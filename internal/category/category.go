// Package category holds the static alert-category lookup tables: display
// metadata per category code and the cross-system code translations.
// Everything here is pure and immutable.
package category

// Well-known category codes.
const (
	// CategoryRockets is the primary rocket/missile alert category
	CategoryRockets = 1

	// CategoryWarning is the general warning category, also the fallback
	// metadata for unknown codes
	CategoryWarning = 4

	// CategoryEnd marks the all-clear record closing an alert
	CategoryEnd = 13

	// CategoryPreAlert marks the early-warning record preceding an alert
	CategoryPreAlert = 14

	// FirstDrillCategory is the first code of the drill range. Drill
	// categories mirror the real ones and never count as alert-bearing.
	FirstDrillCategory = 101
)

// Metadata is the display and classification metadata for a category code.
type Metadata struct {
	// Icon is the host-platform icon identifier
	Icon string

	// Emoji is the single-character rendering used in outward events
	Emoji string

	// IsAlert marks the category as a primary alert (as opposed to an
	// update, all-clear, or drill)
	IsAlert bool
}

// metadataTable maps category codes to display metadata. Codes 9-12 are
// deliberately absent: the upstream system reserves them but has never
// published records with them, and lookups fall back to the warning entry.
var metadataTable = map[int]Metadata{
	CategoryRockets:    {Icon: "mdi:rocket-launch", Emoji: "🚀", IsAlert: true},
	2:                  {Icon: "mdi:airplane-alert", Emoji: "🛩️", IsAlert: true},
	3:                  {Icon: "mdi:biohazard", Emoji: "☣️", IsAlert: true},
	CategoryWarning:    {Icon: "mdi:alert", Emoji: "🚨", IsAlert: true},
	5:                  {Icon: "mdi:home-flood", Emoji: "🌊", IsAlert: true},
	6:                  {Icon: "mdi:account-alert", Emoji: "⚔️", IsAlert: true},
	7:                  {Icon: "mdi:vibrate", Emoji: "📳", IsAlert: true},
	8:                  {Icon: "mdi:radioactive", Emoji: "☢️", IsAlert: true},
	CategoryEnd:        {Icon: "mdi:check-circle", Emoji: "✅", IsAlert: false},
	CategoryPreAlert:   {Icon: "mdi:clock-alert", Emoji: "⚠️", IsAlert: false},
	FirstDrillCategory: {Icon: "mdi:rocket-launch", Emoji: "🚀", IsAlert: false},
	102:                {Icon: "mdi:airplane-alert", Emoji: "🛩️", IsAlert: false},
	103:                {Icon: "mdi:biohazard", Emoji: "☣️", IsAlert: false},
	104:                {Icon: "mdi:alert", Emoji: "🚨", IsAlert: false},
	105:                {Icon: "mdi:home-flood", Emoji: "🌊", IsAlert: false},
	113:                {Icon: "mdi:check-circle", Emoji: "✅", IsAlert: false},
	114:                {Icon: "mdi:clock-alert", Emoji: "⚠️", IsAlert: false},
}

// MetadataFor returns the metadata for a category code. Unknown codes,
// including negative ones, fall back to the general warning entry.
func MetadataFor(code int) Metadata {
	if meta, ok := metadataTable[code]; ok {
		return meta
	}
	return metadataTable[CategoryWarning]
}

// IsAlertCategory reports whether the code denotes a primary alert: the
// code must fall in the half-open pre-drill range and its metadata must be
// alert-bearing. Codes in range but absent from the table inherit the
// warning entry, which is alert-bearing, so they report true. Callers that
// need to distinguish table gaps must consult the table presence
// separately.
func IsAlertCategory(code int) bool {
	if code <= 0 || code >= FirstDrillCategory {
		return false
	}
	return MetadataFor(code).IsAlert
}

// IsUpdateCategory reports whether the code is one of the two update
// categories: pre-alert or all-clear.
func IsUpdateCategory(code int) bool {
	return code == CategoryPreAlert || code == CategoryEnd
}

// realTimeToHistory translates real-time feed category codes to history
// feed codes. The two systems agree on the core codes but the real-time
// feed never carries the reserved range.
var realTimeToHistory = map[int]int{
	1:  CategoryRockets,
	2:  2,
	3:  3,
	4:  CategoryWarning,
	5:  5,
	6:  6,
	7:  7,
	8:  8,
	13: CategoryEnd,
	14: CategoryPreAlert,
}

// vendorAToHistory translates the push vendor's threat identifiers to
// history category codes.
var vendorAToHistory = map[int]int{
	0: CategoryRockets,
	1: 2,
	2: 6,
	3: 7,
	4: 5,
	5: 3,
}

// vendorBToHistory translates the alternate vendor's threat identifiers to
// history category codes.
var vendorBToHistory = map[int]int{
	1: CategoryRockets,
	2: 6,
	3: 7,
	4: 5,
	5: 2,
	6: 3,
	7: 8,
}

// RealTimeToHistory returns the history code for a real-time feed code.
// Absence means no mapping exists, never a default.
func RealTimeToHistory(code int) (int, bool) {
	historyCode, ok := realTimeToHistory[code]
	return historyCode, ok
}

// VendorAToHistory returns the history code for a push-vendor threat id.
func VendorAToHistory(threatID int) (int, bool) {
	historyCode, ok := vendorAToHistory[threatID]
	return historyCode, ok
}

// VendorBToHistory returns the history code for an alternate-vendor threat id.
func VendorBToHistory(threatID int) (int, bool) {
	historyCode, ok := vendorBToHistory[threatID]
	return historyCode, ok
}

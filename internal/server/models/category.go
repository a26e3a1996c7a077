package models

// FallbackCategoryColor is the badge color of categories without an entry.
const FallbackCategoryColor = "#9CA3AF"

// registeredCategories lists the categories with a display color, in the
// order the filter menu and the form selector show them.
var registeredCategories = []struct {
	Name  string
	Color string
}{
	{"Work", "#F59E0B"},
	{"Personal", "#10B981"},
	{"Notes", "#3B82F6"},
	{"Other", "#9CA3AF"},
}

// Categories returns the registered category labels in display order.
func Categories() []string {
	names := make([]string, len(registeredCategories))
	for i, c := range registeredCategories {
		names[i] = c.Name
	}
	return names
}

// CategoryColor returns the display color for a category label. Labels are
// matched exactly; unknown ones get FallbackCategoryColor.
func CategoryColor(name string) string {
	for _, c := range registeredCategories {
		if c.Name == name {
			return c.Color
		}
	}
	return FallbackCategoryColor
}

// IsRegistered reports whether name has its own color.
func IsRegistered(name string) bool {
	for _, c := range registeredCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Package tags picks the canonical metric tag for a role (loss, accuracy, ...)
// from the tags a run actually logged.
package tags

import "strings"

// Preferences is an ordered list of lowercase name fragments. Earlier entries
// win.
type Preferences []string

// Default preference lists.
var (
	DefaultLoss     = Preferences{"loss", "train/loss", "val_loss", "training/loss"}
	DefaultMSE      = Preferences{"mse", "val_mse", "train/mse", "metrics/mse"}
	DefaultAccuracy = Preferences{"accuracy", "acc", "val_accuracy", "train/accuracy", "metrics/accuracy"}
)

// ParsePreferences splits a comma separated list, trimming and lowercasing
// each entry and dropping blanks.
func ParsePreferences(csv string) Preferences {
	var out Preferences
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String renders the list in the comma separated form ParsePreferences accepts.
func (p Preferences) String() string {
	return strings.Join(p, ",")
}

// Resolve returns the tag best matching prefs.
//
// Exact (case-insensitive) matches are tried first, in preference order.
// Only when no preference matches exactly does a second pass look for tags
// containing a preference, again preference-major with tag order as the
// tie-break. When two tags lowercase to the same string the later one is
// used for exact matches.
func Resolve(tags []string, prefs Preferences) (string, bool) {
	lower := make(map[string]string, len(tags))
	for _, tag := range tags {
		lower[strings.ToLower(tag)] = tag
	}

	for _, pref := range prefs {
		if tag, ok := lower[pref]; ok {
			return tag, true
		}
	}

	for _, pref := range prefs {
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), pref) {
				return tag, true
			}
		}
	}
	return "", false
}

package worktree

import (
	"regexp"
	"strings"
)

var (
	nonNameChar  = regexp.MustCompile(`[^a-z0-9.-]+`)
	multiHyphen  = regexp.MustCompile(`-{2,}`)
	planWordsRe  = regexp.MustCompile(`(?i)^(implementation[ _-]?plan|plan)[\s_-]+|[\s_-]+(implementation[ _-]?plan|plan)$`)
)

// Sanitize lowercases name and reduces it to [a-z0-9.-], collapsing runs
// of hyphens, per spec invariant I2 and property P3.
func Sanitize(name string) string {
	lower := strings.ToLower(name)
	replaced := nonNameChar.ReplaceAllString(lower, "-")
	collapsed := multiHyphen.ReplaceAllString(replaced, "-")
	return strings.Trim(collapsed, "-")
}

// StripPlanWords removes one leading and one trailing occurrence of the
// whole words "plan" or "implementation plan" (any casing, separator can
// be space/underscore/hyphen) from filename's stem, together with the
// separator joining it to the rest; separators elsewhere are kept. Used to derive a worktree name from a plan
// file's basename (spec section 4.3 step 2).
func StripPlanWords(stem string) string {
	return planWordsRe.ReplaceAllString(stem, "")
}

// DeriveNameFromPlanFile implements spec section 4.3 step 2 and property
// P3: strip plan words, sanitize, and fall back to sanitizing the
// original stem if stripping collapsed it to nothing.
func DeriveNameFromPlanFile(stem string) string {
	stripped := Sanitize(StripPlanWords(stem))
	if stripped != "" {
		return stripped
	}
	return Sanitize(stem)
}

package sequence

import "regexp"

// DefaultStringMaxLen is the longest string value captured in an assertion.
const DefaultStringMaxLen = 10000

// objectRendering matches default renderings of object identity: "Type@hash"
// suffixes and pointer addresses.
var objectRendering = regexp.MustCompile(`@[0-9a-h]{1,8}|0x[0-9a-f]{8,}`)

// LooksLikeObjectRendering reports whether s appears to contain an object
// identity, which differs from run to run.
func LooksLikeObjectRendering(s string) bool {
	return objectRendering.MatchString(s)
}

// StringLengthOK reports whether s is short enough to appear in an assertion.
// A non-positive maxLen disables the limit.
func StringLengthOK(s string, maxLen int) bool {
	return maxLen <= 0 || len(s) <= maxLen
}

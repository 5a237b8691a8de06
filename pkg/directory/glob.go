package directory

import (
	"regexp"
	"strings"
)

// AllNodes is the listing pattern matching every host.
const AllNodes = "*"

// GlobRegexp translates a host glob into an anchored regular expression.
// '*' matches any run of characters and '?' a single character. Everything
// else matches literally.
func GlobRegexp(pattern string) string {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return "^" + quoted + "$"
}

// MatchGlob reports whether host matches pattern, ignoring case. An empty
// pattern matches every host.
func MatchGlob(pattern, host string) bool {
	if pattern == "" || pattern == AllNodes {
		return true
	}
	re, err := regexp.Compile("(?i)" + GlobRegexp(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(host)
}

package dashboard

import (
	"regexp"
	"strconv"
)

// Limits are the y-axis bounds taken from graph_args.
type Limits struct {
	Upper      *int
	Lower      *int
	Percentage bool
}

var (
	upperLimitRegex = regexp.MustCompile(`(--upper-limit|-u)\s+(\d+)`)
	lowerLimitRegex = regexp.MustCompile(`(--lower-limit|-l)\s+(\d+)`)
)

// ParseLimits extracts --upper-limit/-u and --lower-limit/-l from graph_args.
// The first match of each wins. A value that does not fit an int is treated
// as absent. Percentage is set when the upper limit is exactly 100 and the
// graph is stacked. ParseLimits never fails.
func ParseLimits(args string, stacked bool) Limits {
	l := Limits{
		Upper: findLimit(upperLimitRegex, args),
		Lower: findLimit(lowerLimitRegex, args),
	}
	l.Percentage = stacked && l.Upper != nil && *l.Upper == 100
	return l
}

func findLimit(re *regexp.Regexp, args string) *int {
	m := re.FindStringSubmatch(args)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &n
}

package guard

import (
	"regexp"
	"strings"
)

// Pattern is a compiled exception route. Patterns containing `*` match
// as an anchored regular expression with every `*` replaced by `.*`;
// anything else must equal the path exactly.
type Pattern struct {
	raw string
	re  *regexp.Regexp
	err error
}

// CompilePattern compiles one exception route. Characters other than `*`
// are passed to the regular expression unescaped, so a pattern such as
// "/v1.0/*" lets `.` match any character. A pattern that does not
// compile is kept but never matches; Err reports why.
func CompilePattern(raw string) Pattern {
	p := Pattern{raw: raw}
	if !strings.Contains(raw, "*") {
		return p
	}
	p.re, p.err = regexp.Compile("^" + strings.ReplaceAll(raw, "*", ".*") + "$")
	return p
}

// Match reports whether path matches the pattern
func (p Pattern) Match(path string) bool {
	if p.err != nil {
		return false
	}
	if p.re != nil {
		return p.re.MatchString(path)
	}
	return path == p.raw
}

// String returns the pattern as configured
func (p Pattern) String() string {
	return p.raw
}

// Err returns the compile error of a wildcard pattern, if any
func (p Pattern) Err() error {
	return p.err
}

// IsWildcard reports whether the pattern contains `*`
func (p Pattern) IsWildcard() bool {
	return p.re != nil || p.err != nil
}

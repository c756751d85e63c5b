package discovery

import (
	"fmt"
	"regexp"
)

// DefaultPrefix is the folder prefix written by DJI aircraft
const DefaultPrefix = "DJI"

// Matcher recognises route folders named <PREFIX>_<12-14 digit timestamp>_<3 digit route>_*
type Matcher struct {
	prefix string
	re     *regexp.Regexp
}

// NewMatcher builds a matcher for the given folder prefix
func NewMatcher(prefix string) (*Matcher, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(prefix) + `_(\d{12,14})_(\d{3})_.*`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile route folder pattern: %w", err)
	}
	return &Matcher{prefix: prefix, re: re}, nil
}

// DefaultMatcher returns the matcher for DJI folders
func DefaultMatcher() *Matcher {
	m, _ := NewMatcher(DefaultPrefix)
	return m
}

// Match returns the route number embedded in name
func (m *Matcher) Match(name string) (string, bool) {
	sub := m.re.FindStringSubmatch(name)
	if sub == nil {
		return "", false
	}
	return sub[2], true
}

// Timestamp returns the timestamp component of a matching folder name
func (m *Matcher) Timestamp(name string) (string, bool) {
	sub := m.re.FindStringSubmatch(name)
	if sub == nil {
		return "", false
	}
	return sub[1], true
}

// Grammar describes the expected folder naming for log and error messages
func (m *Matcher) Grammar() string {
	return m.prefix + "_YYYYMMDDHHMM[SS]_###_*"
}

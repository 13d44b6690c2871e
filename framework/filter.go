package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by their slash-separated TestID.
//
// A MustMatch pattern is split on "/" like the -run flag of "go test": each element is matched
// against the corresponding element of the TestID, so a group such as "reqres" is run when a
// pattern of "reqres/users" could select one of its children. MustNotMatch patterns are matched
// against the whole TestID string.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	if r.MustNotMatch.AnyMatch(id.String()) {
		return false
	}
	if !r.MustMatch.IsDefined() {
		return true
	}
	for _, p := range r.MustMatch.patterns {
		if matchesByElement(p.String(), id.Path) {
			return true
		}
	}
	return false
}

func matchesByElement(pattern string, path []string) bool {
	elements := strings.Split(pattern, "/")
	for i, name := range path {
		if i >= len(elements) {
			return true
		}
		rx, err := regexp.Compile(elements[i])
		if err != nil || !rx.MatchString(name) {
			return false
		}
	}
	return true
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

// Type is called by the command line parser to describe the flag's value in usage text.
func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// PrintFilterDescription explains to the user which tests will be skipped and why.
func PrintFilterDescription(out io.Writer, filters RegexFilters, disabledSuites []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}

	if len(disabledSuites) > 0 {
		fmt.Fprintln(out, "The following suites are disabled in the configuration and will not run:")
		fmt.Fprintf(out, "  %s\n", strings.Join(disabledSuites, ", "))
		fmt.Fprintln(out)
	}
}

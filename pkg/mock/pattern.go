package mock

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Pattern is the matching expression of a rule. It is compiled as a regular
// expression and searched anywhere in the subject. Expressions that are not
// valid regular expressions match as plain substrings. The zero Pattern
// matches everything.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// Compile builds a Pattern from expr.
func Compile(expr string) Pattern {
	p := Pattern{raw: expr}
	if expr == "" {
		return p
	}
	if re, err := regexp.Compile(expr); err == nil {
		p.re = re
	}
	return p
}

// Match reports whether the pattern occurs in s.
func (p Pattern) Match(s string) bool {
	if p.re == nil {
		return strings.Contains(s, p.raw)
	}
	return p.re.MatchString(s)
}

// IsRegexp reports whether the expression compiled as a regular expression.
func (p Pattern) IsRegexp() bool {
	return p.re != nil
}

func (p Pattern) String() string {
	return p.raw
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var expr string
	if err := json.Unmarshal(data, &expr); err != nil {
		return err
	}
	*p = Compile(expr)
	return nil
}

package logging

import (
	"regexp"
	"strings"
)

// Ignore-list patterns use a deliberately small glob language:
//
//	*  matches any run of characters, including none and including '/'
//	?  matches exactly one character
//	.  and every other character match literally
//
// Each pattern must cover the whole subject; "/api/*" matches
// "/api/users/1" but not "/v2/api/users". Patterns are translated to
// anchored regular expressions once, at configuration time.
type pattern struct {
	raw string
	re  *regexp.Regexp
}

func compilePattern(raw string) (pattern, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range raw {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return pattern{}, err
	}
	return pattern{raw: raw, re: re}, nil
}

func (p pattern) match(s string) bool {
	return p.re != nil && p.re.MatchString(s)
}

// patternList is an ordered set of compiled ignore patterns.
type patternList []pattern

func compilePatterns(raws []string) (patternList, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	list := make(patternList, 0, len(raws))
	for _, raw := range raws {
		if raw == emptyString {
			continue
		}
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (pl patternList) Match(s string) bool {
	for _, p := range pl {
		if p.match(s) {
			return true
		}
	}
	return false
}

package sim

import (
	"strings"
)

// NameMustBeValid panics if the name does not follow the naming convention.
//  1. It must be organized in a hierarchical structure separated by dots,
//     for example "L1.Prefetcher".
//  2. Individual elements must not be empty.
//  3. Individual elements must start with a capital letter and must not
//     contain underscores, quotes, or dashes.
//  4. Elements in a series use square brackets, for example "L1[2]".
func NameMustBeValid(name string) {
	for _, elem := range strings.Split(name, ".") {
		if msg := elemProblem(elem); msg != "" {
			panic("Name " + name + " is not valid: " + msg)
		}
	}
}

func elemProblem(elem string) string {
	base, rest, hasIndex := strings.Cut(elem, "[")
	if base == "" {
		return "Name element must not be empty"
	}

	if strings.ContainsAny(base, "_\"'-]") {
		return "Name element must not contain special characters"
	}

	if base[0] < 'A' || base[0] > 'Z' {
		return "Name element must start with a capital letter"
	}

	if hasIndex && !validIndexSuffix("["+rest) {
		return "Name bracket must match"
	}

	return ""
}

func validIndexSuffix(s string) bool {
	for len(s) > 0 {
		if s[0] != '[' {
			return false
		}

		end := strings.IndexByte(s, ']')
		if end < 2 {
			return false
		}

		for _, c := range s[1:end] {
			if c < '0' || c > '9' {
				return false
			}
		}

		s = s[end+1:]
	}

	return true
}

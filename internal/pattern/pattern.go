// Package pattern provides stateless, regex-driven edits over an ordered
// sequence of text lines.
//
// Release metadata files accumulate entries chronologically, so the
// highest-index matching line is normally the authoritative one; every
// "last" operation scans from the end of the sequence. A missing match is
// reported as a boolean outcome, never an error — callers decide whether
// that is fatal.
package pattern

import "regexp"

// Replacer produces replacement text from the submatches of one line.
// groups[0] is the whole match, groups[1:] the captured groups.
type Replacer func(groups []string) string

// SearchLastIndex returns the index of the last line matching re, or -1.
func SearchLastIndex(lines []string, re *regexp.Regexp) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// MatchLast returns the submatches of the last matching line, or nil if no
// line matches.
func MatchLast(lines []string, re *regexp.Regexp) []string {
	i := SearchLastIndex(lines, re)
	if i < 0 {
		return nil
	}
	return re.FindStringSubmatch(lines[i])
}

// ReplaceLast replaces the matched substring of the last matching line with
// repl. Only that single line is mutated. It reports whether a replacement
// occurred.
func ReplaceLast(lines []string, re *regexp.Regexp, repl string) bool {
	return ReplaceLastFunc(lines, re, func([]string) string { return repl })
}

// ReplaceLastFunc is ReplaceLast with the replacement text computed from the
// captured groups of the match.
func ReplaceLastFunc(lines []string, re *regexp.Regexp, fn Replacer) bool {
	i := SearchLastIndex(lines, re)
	if i < 0 {
		return false
	}
	loc := re.FindStringSubmatchIndex(lines[i])
	groups := submatches(lines[i], loc)
	lines[i] = lines[i][:loc[0]] + fn(groups) + lines[i][loc[1]:]
	return true
}

// ReplaceAll replaces every occurrence of re on every matching line and
// reports whether at least one line changed. Non-matching lines are left
// untouched.
func ReplaceAll(lines []string, re *regexp.Regexp, repl string) bool {
	return ReplaceAllFunc(lines, re, func([]string) string { return repl })
}

// ReplaceAllFunc is ReplaceAll with a per-match replacement callback.
func ReplaceAllFunc(lines []string, re *regexp.Regexp, fn Replacer) bool {
	changed := false
	for i := range lines {
		if !re.MatchString(lines[i]) {
			continue
		}
		lines[i] = re.ReplaceAllStringFunc(lines[i], func(m string) string {
			return fn(re.FindStringSubmatch(m))
		})
		changed = true
	}
	return changed
}

// InsertAfterLast inserts newLine immediately after the last line matching
// re, shifting subsequent entries. It returns the resulting sequence and
// whether an insertion occurred; without a match the input is returned
// unchanged.
func InsertAfterLast(lines []string, re *regexp.Regexp, newLine string) ([]string, bool) {
	i := SearchLastIndex(lines, re)
	if i < 0 {
		return lines, false
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:i+1]...)
	out = append(out, newLine)
	out = append(out, lines[i+1:]...)
	return out, true
}

// submatches extracts submatch strings from a FindStringSubmatchIndex result.
func submatches(line string, loc []int) []string {
	groups := make([]string, 0, len(loc)/2)
	for g := 0; g < len(loc); g += 2 {
		if loc[g] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, line[loc[g]:loc[g+1]])
	}
	return groups
}

package services

import (
	"strings"
	"unicode"
)

// MatchFunc reports whether a candidate name refers to filename.
type MatchFunc func(filename, candidate string) bool

// FilenameMatcher decides which names reported by the generation service
// refer to which real files. Levels are ordered from strictest to loosest;
// a looser level is only tried on names no stricter level has claimed.
type FilenameMatcher interface {
	Levels() []MatchFunc
}

// CascadeMatcher matches exactly, then ignoring case and whitespace, then
// by substring in either direction.
type CascadeMatcher struct{}

// Levels implements FilenameMatcher.
func (CascadeMatcher) Levels() []MatchFunc {
	return []MatchFunc{exactName, normalisedName, substringName}
}

// Match returns the index of the best candidate for a single filename, or -1.
// An empty candidate is never matched.
func (m CascadeMatcher) Match(filename string, candidates []string) int {
	for _, level := range m.Levels() {
		if i := firstMatch(level, filename, candidates); i >= 0 {
			return i
		}
	}
	return -1
}

func exactName(filename, candidate string) bool {
	return filename != "" && filename == candidate
}

func normalisedName(filename, candidate string) bool {
	want := normaliseName(filename)
	return want != "" && want == normaliseName(candidate)
}

func substringName(filename, candidate string) bool {
	want, got := normaliseName(filename), normaliseName(candidate)
	if want == "" || got == "" {
		return false
	}
	return strings.Contains(want, got) || strings.Contains(got, want)
}

func firstMatch(level MatchFunc, filename string, candidates []string) int {
	for i, c := range candidates {
		if c != "" && level(filename, c) {
			return i
		}
	}
	return -1
}

// normaliseName lowercases and collapses whitespace runs to one space.
func normaliseName(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), " ")
}

// claimMatches maps each filename to a distinct candidate index. Each level
// runs across every filename before the next level starts, so a loose match
// for one file never takes a candidate another file matches more strictly.
func claimMatches(m FilenameMatcher, filenames, candidates []string) map[string]int {
	pool := make([]string, len(candidates))
	copy(pool, candidates)

	out := make(map[string]int, len(filenames))
	for _, level := range m.Levels() {
		for _, name := range filenames {
			if _, done := out[name]; done || name == "" {
				continue
			}
			idx := firstMatch(level, name, pool)
			if idx < 0 {
				continue
			}
			out[name] = idx
			pool[idx] = ""
		}
	}
	return out
}

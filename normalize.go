package veda

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Pass is one rewrite step of the normalizer. Apply is pure.
type Pass struct {
	Name  string
	Apply func(string) string
}

// periodSentinel temporarily replaces periods that must not be read as
// sentence boundaries. It is a private-use rune, so it never matches \w.
const periodSentinel = "\uE000"

// headingMinRunes is the minimum length of a line promoted to a heading.
const headingMinRunes = 4

var (
	lineBreakRe     = regexp.MustCompile(`\r\n|\r`)
	innerPeriodRe   = regexp.MustCompile(`(\w)\.(\w)`)
	sentenceEndRe   = regexp.MustCompile(`([a-z0-9])\.(\s*)([A-Z])`)
	colonListRe     = regexp.MustCompile(`:[ \t]*\n(\w)`)
	bulletRe        = regexp.MustCompile(`(?m)^[ \t]*[*-][ \t]+`)
	headingLineRe   = regexp.MustCompile(`(?m)^(#+ .+)$`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
)

var passes = []Pass{
	{Name: "line-endings", Apply: normalizeLineEndings},
	{Name: "protect-periods", Apply: protectPeriods},
	{Name: "sentence-breaks", Apply: breakSentences},
	{Name: "restore-periods", Apply: restorePeriods},
	{Name: "headings", Apply: promoteHeadings},
	{Name: "colon-lists", Apply: colonToList},
	{Name: "bullets", Apply: normalizeBullets},
	{Name: "heading-spacing", Apply: spaceHeadings},
	{Name: "collapse-blank-lines", Apply: collapseBlankLines},
	{Name: "trim-lines", Apply: trimLines},
	{Name: "trim", Apply: strings.TrimSpace},
}

// Passes returns the normalizer's rewrite passes in application order.
// Order is load-bearing: later passes rely on earlier ones.
func Passes() []Pass {
	return append([]Pass(nil), passes...)
}

// Normalize rewrites one raw fragment of loosely punctuated prose into
// markdown-flavored text. It sees only this fragment, so its output is
// locally coherent at best. Normalize is total and deterministic.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for _, p := range passes {
		out = p.Apply(out)
	}
	return out
}

func normalizeLineEndings(s string) string {
	return lineBreakRe.ReplaceAllString(s, "\n")
}

// protectPeriods repeats until stable because matches cannot overlap:
// one sweep over "a.b.c" only reaches the first period.
func protectPeriods(s string) string {
	for innerPeriodRe.MatchString(s) {
		s = innerPeriodRe.ReplaceAllString(s, "${1}"+periodSentinel+"${2}")
	}
	return s
}

func breakSentences(s string) string {
	return sentenceEndRe.ReplaceAllString(s, "${1}.\n\n${3}")
}

func restorePeriods(s string) string {
	return strings.ReplaceAll(s, periodSentinel, ".")
}

// promoteHeadings turns short capitalized lines that are followed by a line
// break into level-3 headings. A line ending in a colon introduces a list,
// so neither it nor the line right after it is promoted.
func promoteHeadings(s string) string {
	lines := strings.Split(s, "\n")
	for i := 0; i < len(lines)-1; i++ {
		if !isHeadingCandidate(lines[i]) || endsWithColon(lines[i]) {
			continue
		}
		if i > 0 && endsWithColon(lines[i-1]) {
			continue
		}
		lines[i] = "### " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func isHeadingCandidate(line string) bool {
	if line == "" || line[0] < 'A' || line[0] > 'Z' {
		return false
	}
	return utf8.RuneCountInString(line) >= headingMinRunes
}

func endsWithColon(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t"), ":")
}

func colonToList(s string) string {
	return colonListRe.ReplaceAllString(s, ":\n- ${1}")
}

func normalizeBullets(s string) string {
	return bulletRe.ReplaceAllString(s, "- ")
}

func spaceHeadings(s string) string {
	return headingLineRe.ReplaceAllString(s, "\n${1}\n")
}

func collapseBlankLines(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}

func trimLines(s string) string {
	return trailingSpaceRe.ReplaceAllString(s, "")
}

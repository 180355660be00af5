package rules

import "regexp"

// Pattern is a compiled matcher for one rule.
type Pattern struct {
	re *regexp.Regexp
}

// Compile builds a Pattern from a shared prefix and a rule expression. The
// prefix is concatenated in front of the expression before compilation, so a
// prefix of "^\[.*\] " anchors every rule behind the same timestamp shape.
func Compile(prefix, expr string) (Pattern, error) {
	re, err := regexp.Compile(prefix + expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{re: re}, nil
}

// MustCompile is Compile for patterns known to be valid, mostly tests.
func MustCompile(prefix, expr string) Pattern {
	p, err := Compile(prefix, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the line matches anywhere.
func (p Pattern) Match(line string) bool {
	return p.re.MatchString(line)
}

// SubmatchIndex returns the byte ranges of the match and its capture groups,
// or nil when the line does not match. Group k occupies indexes 2k and 2k+1;
// a -1 start means the group did not participate in the match.
func (p Pattern) SubmatchIndex(line string) []int {
	return p.re.FindStringSubmatchIndex(line)
}

// Groups returns the number of capture groups in the compiled expression,
// counting the prefix's groups as well.
func (p Pattern) Groups() int {
	return p.re.NumSubexp()
}

// String returns the composed expression, prefix included.
func (p Pattern) String() string {
	return p.re.String()
}

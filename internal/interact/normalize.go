package interact

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var amountToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// NormalizeText folds compatibility forms (NBSP, full-width digits) and
// collapses whitespace runs to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// FoldKey is the comparison key for names: normalized and case-folded.
func FoldKey(s string) string {
	return cases.Fold().String(NormalizeText(s))
}

func FirstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return NormalizeText(line)
}

func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// NormalizeAmount strips currency glyphs, separators and whitespace and
// parses the leading numeric token. Unparseable input yields NaN.
func NormalizeAmount(s string) float64 {
	compact := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(s))
	tok := amountToken.FindString(compact)
	if tok == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IndexOfAmount returns the index of the first label whose amount equals
// target exactly, or -1.
func IndexOfAmount(labels []string, target float64) int {
	for i, label := range labels {
		v := NormalizeAmount(label)
		if !math.IsNaN(v) && v == target {
			return i
		}
	}
	return -1
}

// Package rules turns free-text specification limits into normalized rules.
package rules

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/specs-importer/constants"
)

// Interpretation is the normalized form of one limit expression.
type Interpretation struct {
	Rule     constants.Rule `json:"rule"`
	Min      string         `json:"min"`
	Max      string         `json:"max"`
	TextSpec string         `json:"textSpec"`
}

var (
	reTolerance = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:[a-zA-Zµμ%/]+)?\s*±\s*(-?\d+(?:\.\d+)?)\s*%`)
	reUpper     = regexp.MustCompile(`nmt|not more than|<=|<|^max`)
	reLower     = regexp.MustCompile(`nlt|not less than|>=|>|^min`)
	reRange     = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*%?\s*(?:-|–|to)\s*(-?\d+(?:\.\d+)?)`)
	reEqual     = regexp.MustCompile(`equal to`)
	reNumber    = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Interpret classifies raw in priority order: tolerance, upper bound, lower bound,
// range, equality, free text. Empty input yields N/A.
func Interpret(raw string) Interpretation {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return Interpretation{Rule: constants.RuleNA}
	}
	lower := strings.ToLower(clean)

	var out Interpretation
	switch {
	case reTolerance.MatchString(clean):
		m := reTolerance.FindStringSubmatch(clean)
		central, _ := strconv.ParseFloat(m[1], 64)
		pct, _ := strconv.ParseFloat(m[2], 64)
		out = Interpretation{
			Rule: constants.RuleRange,
			Min:  toFixed2(central * (1 - pct/100)),
			Max:  toFixed2(central * (1 + pct/100)),
		}
	case reUpper.MatchString(lower):
		out = Interpretation{Rule: constants.RuleMax, Max: reNumber.FindString(clean)}
	case reLower.MatchString(lower):
		out = Interpretation{Rule: constants.RuleMin, Min: reNumber.FindString(clean)}
	case reRange.MatchString(lower):
		m := reRange.FindStringSubmatch(lower)
		out = Interpretation{Rule: constants.RuleRange, Min: m[1], Max: m[2]}
	case reEqual.MatchString(lower):
		out = Interpretation{Rule: constants.RuleEqual, Min: reNumber.FindString(clean)}
	default:
		return Interpretation{Rule: constants.RuleText, TextSpec: clean}
	}

	if missingBounds(out) {
		return Interpretation{Rule: constants.RuleText, TextSpec: clean}
	}
	return out
}

func missingBounds(in Interpretation) bool {
	switch in.Rule {
	case constants.RuleMin, constants.RuleEqual:
		return in.Min == ""
	case constants.RuleMax:
		return in.Max == ""
	case constants.RuleRange:
		return in.Min == "" || in.Max == ""
	}
	return false
}

// toFixed2 formats f with two decimals, rounding half away from zero on the
// exact binary value of f (165.00000000000003 -> "165.00", 1.005 -> "1.00").
// Negative inputs keep their sign even when they round to zero.
func toFixed2(f float64) string {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	neg := r.Sign() < 0
	r.Abs(r)
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	cents := new(big.Int).Quo(r.Num(), r.Denom())

	digits := cents.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	res := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if neg {
		res = "-" + res
	}
	return res
}

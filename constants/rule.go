package constants

// Rule is the normalized shape of a specification limit.
type Rule string

const (
	RuleRange Rule = "Range"
	RuleMin   Rule = "Min"
	RuleMax   Rule = "Max"
	RuleEqual Rule = "Equal"
	RuleText  Rule = "Text"
	RuleNA    Rule = "N/A"
)

// IsNumeric reports whether the rule carries min/max values rather than a text spec.
func (r Rule) IsNumeric() bool {
	switch r {
	case RuleRange, RuleMin, RuleMax, RuleEqual:
		return true
	}
	return false
}

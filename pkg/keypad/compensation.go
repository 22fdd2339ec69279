package keypad

// Rule remaps a candidate pair to the key that was most likely intended.
type Rule struct {
	First    Key
	Second   Key
	Resolved Key
}

// Compensation is a decision table applied to the first two scan candidates.
type Compensation []Rule

// BrokenMiddleColumn compensates for the shorted middle column: a middle
// column press shows up as the key followed by '#'.
var BrokenMiddleColumn = Compensation{
	{First: '2', Second: '#', Resolved: '1'},
	{First: '5', Second: '#', Resolved: '4'},
	{First: '8', Second: '#', Resolved: '7'},
}

// NoCompensation is used once the keypad is repaired.
var NoCompensation = Compensation{}

// Resolve picks the reported key from an ordered candidate list. Candidates
// beyond the first two are ignored.
func (c Compensation) Resolve(candidates []Key) Key {
	if len(candidates) == 0 {
		return None
	}
	if len(candidates) > 1 {
		for _, rule := range c {
			if candidates[0] == rule.First && candidates[1] == rule.Second {
				return rule.Resolved
			}
		}
	}
	return candidates[0]
}

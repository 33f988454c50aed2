package eval

import (
	"github.com/google/btree"

	"nickandperla.net/fxprog/internal/token"
)

// labelKey orders labels by digit, then by position.
type labelKey struct {
	digit int
	pos   int
}

func labelLess(a, b labelKey) bool {
	if a.digit != b.digit {
		return a.digit < b.digit
	}
	return a.pos < b.pos
}

// labelIndex maps each label digit to the positions of "Lbl d" in the program.
type labelIndex struct {
	tree *btree.BTreeG[labelKey]
}

func newLabelIndex(toks []token.Token) *labelIndex {
	idx := &labelIndex{tree: btree.NewG[labelKey](4, labelLess)}
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Is(token.Lbl) && toks[i+1].Type.Class == token.ClassDigit {
			idx.tree.ReplaceOrInsert(labelKey{digit: toks[i+1].Type.Digit, pos: i})
		}
	}
	return idx
}

// find returns the position of the first "Lbl digit" in the program.
func (l *labelIndex) find(digit int) (int, bool) {
	pos, found := -1, false
	l.tree.AscendGreaterOrEqual(labelKey{digit: digit, pos: -1}, func(k labelKey) bool {
		if k.digit == digit {
			pos, found = k.pos, true
		}
		return false
	})
	return pos, found
}

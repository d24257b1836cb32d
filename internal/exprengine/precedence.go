package exprengine

// Associativity describes how operators within one precedence group
// combine.
type Associativity uint8

const (
	LeftToRight Associativity = iota
	RightToLeft
)

// group is one precedence level, lowest index binds tightest, matching
// op_precedence in the original compiler's expressionable.c.
type group struct {
	operators     []string
	associativity Associativity
}

// PrecedenceTable holds the fourteen precedence groups from spec.md §4.4,
// in descending-precedence order:
//
//	0  postfix/call: ++ -- () [] ( [ . ->          (left-to-right)
//	1  * / %
//	2  + -
//	3  << >>
//	4  < <= > >=
//	5  == !=
//	6  &
//	7  ^
//	8  |
//	9  &&
//	10 ||
//	11 ?:                                           (right-to-left)
//	12 = += -= *= /= %= <<= >>= &= ^= |=            (right-to-left)
//	13 ,
var PrecedenceTable = []group{
	{[]string{"++", "--", "()", "[]", "(", "[", ".", "->"}, LeftToRight},
	{[]string{"*", "/", "%"}, LeftToRight},
	{[]string{"+", "-"}, LeftToRight},
	{[]string{"<<", ">>"}, LeftToRight},
	{[]string{"<", "<=", ">", ">="}, LeftToRight},
	{[]string{"==", "!="}, LeftToRight},
	{[]string{"&"}, LeftToRight},
	{[]string{"^"}, LeftToRight},
	{[]string{"|"}, LeftToRight},
	{[]string{"&&"}, LeftToRight},
	{[]string{"||"}, LeftToRight},
	{[]string{"?", ":"}, RightToLeft},
	{[]string{"=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "^=", "|="}, RightToLeft},
	{[]string{","}, LeftToRight},
}

// precedenceOf returns the precedence group index for op, and the group
// itself, or (-1, nil) if op is not a recognized operator.
func precedenceOf(op string) (int, *group) {
	for i := range PrecedenceTable {
		g := &PrecedenceTable[i]
		for _, o := range g.operators {
			if o == op {
				return i, g
			}
		}
	}
	return -1, nil
}

// leftOpHasPriority reports whether, when a new operator rightOp is seen to
// the right of an already-built expression whose top operator is leftOp, the
// tree must be rotated so that leftOp takes its right child's left operand
// and becomes the left child of rightOp (true triggers shiftChildrenLeft in
// the caller; false keeps rightOp nested on the right).
//
// Right-associative groups never rotate. Otherwise the left operator "has
// priority" (a rotation is needed) when its precedence index is <= the
// right operator's (lower index == tighter binding), which includes two
// identical operators, so same-operator chains nest on the left.
func leftOpHasPriority(leftOp, rightOp string) bool {
	leftPrec, leftGroup := precedenceOf(leftOp)
	rightPrec, _ := precedenceOf(rightOp)
	if leftGroup == nil {
		return false
	}
	if leftGroup.associativity == RightToLeft {
		return false
	}
	return leftPrec <= rightPrec
}

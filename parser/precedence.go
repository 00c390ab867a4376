package parser

// Precedence is a single owned, mutable operator-precedence table.
// Unlike a table of compile-time constants, Kaleidoscope lets user
// code install new binary operators at parse time (a "def binary CHAR
// [N] (a b) ..." prototype), so the table must be writable by the
// parser itself as it consumes such a prototype.
//
// Assignment ('=') is seeded at priority 2, below every other seeded
// operator, so its right-hand side takes in any run of tighter-binding
// operators before the assignment is combined. Like every other
// operator it associates left: "x = y = 1" parses as "(x = y) = 1".
type Precedence struct {
	table map[byte]int
}

// NewPrecedence seeds the canonical operator table from spec: '=' at
// priority 2, '<' at 10, '+'/'-' at 20, '*' at 40.
func NewPrecedence() *Precedence {
	return &Precedence{table: map[byte]int{
		'=': 2,
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
	}}
}

// Get returns the priority of op, or -1 if op is not a known operator.
func (p *Precedence) Get(op byte) int {
	if prec, ok := p.table[op]; ok {
		return prec
	}
	return -1
}

// Set installs or overwrites the priority of a user-defined operator.
func (p *Precedence) Set(op byte, priority int) {
	p.table[op] = priority
}

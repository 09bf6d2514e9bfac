package debugger

import (
	"fmt"
	"strings"

	"github.com/rv32iss/emulator/vm"
)

// ExpressionEvaluator evaluates expressions in debugger commands
type ExpressionEvaluator struct {
	valueHistory []uint32 // History of evaluated values
	valueNumber  int      // Current value number for $1, $2, etc.
}

// NewExpressionEvaluator creates a new expression evaluator
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		valueHistory: make([]uint32, 0),
		valueNumber:  0,
	}
}

// EvaluateExpression evaluates an expression and returns the result
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.Machine, symbols map[string]uint32) (uint32, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return 0, err
	}

	// Store in history
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates an expression and returns a boolean result (for conditions)
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.Machine, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return false, err
	}

	return result != 0, nil
}

// GetValueNumber returns the current value number
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number
func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}

	return e.valueHistory[number-1], nil
}

// evaluate tokenizes expr with ExprLexer and resolves it with ExprParser's
// precedence-climbing grammar, rather than re-implementing number/operator
// parsing here — a string-split evaluator can't tell "0xFF & 0x0F"'s "&"
// from a character inside a hex literal; a real tokenizer can.
func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.Machine, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	// The lexer ends the token stream early at a character it cannot read.
	if last := tokens[len(tokens)-1]; last.Pos < len(expr) {
		return 0, fmt.Errorf("unexpected character %q at position %d", expr[last.Pos], last.Pos)
	}
	parser := NewExprParser(tokens, machine, symbols, e)
	return parser.Parse()
}

// Reset clears the value history
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}

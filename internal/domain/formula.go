package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// EvaluateFormula evaluates a small arithmetic cost/quantity formula against
// a bound variable context. The grammar is limited to + - * / ( ), decimal
// literals and identifiers that must appear verbatim in vars. Input is
// screened against a hard character allow-list before parsing, so nothing
// resembling general code ever reaches evaluation. Pure function.
func EvaluateFormula(formula string, vars map[string]float64) (float64, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, ErrEmptyFormula
	}
	for _, r := range formula {
		if !allowedFormulaRune(r) {
			return 0, &DisallowedTokenError{Token: r}
		}
	}
	if err := screenTokenShape(formula); err != nil {
		return 0, err
	}

	p := &formulaParser{input: []rune(formula), vars: vars}
	value, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, ErrMalformedExpression
	}
	return value, nil
}

// CheckFormulaSyntax validates a formula's shape without a variable context.
// Identifiers resolve to a placeholder and division by zero is ignored, so
// only structural defects (disallowed tokens, malformed expressions, empty
// input) are reported. Used when templates are created, before any tick
// supplies real variables.
func CheckFormulaSyntax(formula string) error {
	if strings.TrimSpace(formula) == "" {
		return ErrEmptyFormula
	}
	for _, r := range formula {
		if !allowedFormulaRune(r) {
			return &DisallowedTokenError{Token: r}
		}
	}
	if err := screenTokenShape(formula); err != nil {
		return err
	}

	p := &formulaParser{input: []rune(formula), lenient: true}
	if _, err := p.parseExpression(); err != nil {
		return err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return ErrMalformedExpression
	}
	return nil
}

// Allow-list: digits, arithmetic operators, parens, dot, space, identifier
// characters. Everything else is rejected up front.
func allowedFormulaRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '+' || r == '-' || r == '*' || r == '/':
		return true
	case r == '(' || r == ')' || r == '.' || r == ' ':
		return true
	case r == '_':
		return true
	case unicode.IsLetter(r) && r < 128:
		return true
	default:
		return false
	}
}

// screenTokenShape rejects word sequences such as "DROP TABLE" that pass the
// character allow-list but are foreign syntax rather than arithmetic: two
// identifiers separated only by whitespace can never occur in the grammar, so
// the second word is reported as a disallowed token instead of being parsed.
func screenTokenShape(formula string) error {
	runes := []rune(formula)
	inWord := false
	wordEnded := false
	for _, r := range runes {
		isWordRune := r == '_' || unicode.IsLetter(r) || (inWord && r >= '0' && r <= '9')
		switch {
		case isWordRune && wordEnded:
			return &DisallowedTokenError{Token: r}
		case isWordRune:
			inWord = true
		case r == ' ' && inWord:
			inWord = false
			wordEnded = true
		default:
			inWord = false
			wordEnded = false
		}
	}
	return nil
}

// formulaParser is a recursive-descent parser with the usual precedence:
// expression = term (('+'|'-') term)*
// term       = factor (('*'|'/') factor)*
// factor     = number | identifier | '(' expression ')' | ('+'|'-') factor
type formulaParser struct {
	input []rune
	pos   int
	vars  map[string]float64

	// lenient mode resolves any identifier to 1 and tolerates zero
	// denominators; used for syntax-only checks.
	lenient bool
}

func (p *formulaParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *formulaParser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *formulaParser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *formulaParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else if right == 0 {
			if !p.lenient {
				return 0, ErrDivisionByZero
			}
			left = 0
		} else {
			left /= right
		}
	}
}

func (p *formulaParser) parseFactor() (float64, error) {
	p.skipSpaces()
	r := p.peek()

	switch {
	case r == '+':
		p.pos++
		return p.parseFactor()
	case r == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case r == '(':
		p.pos++
		v, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, ErrMalformedExpression
		}
		p.pos++
		return v, nil
	case r >= '0' && r <= '9' || r == '.':
		return p.parseNumber()
	case r == '_' || unicode.IsLetter(r):
		return p.parseIdentifier()
	default:
		return 0, ErrMalformedExpression
	}
}

func (p *formulaParser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r == '.' {
			if seenDot {
				return 0, ErrMalformedExpression
			}
			seenDot = true
			p.pos++
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		p.pos++
	}
	value, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, ErrMalformedExpression
	}
	return value, nil
}

func (p *formulaParser) parseIdentifier() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r == '_' || unicode.IsLetter(r) || (r >= '0' && r <= '9') {
			p.pos++
			continue
		}
		break
	}
	name := string(p.input[start:p.pos])
	value, ok := p.vars[name]
	if !ok {
		if p.lenient {
			return 1, nil
		}
		return 0, &UnknownVariableError{Name: name}
	}
	return value, nil
}

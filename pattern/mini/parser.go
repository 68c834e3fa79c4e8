// parser.go - hand-rolled recursive-descent parser for the mini-notation
// grammar: stacks, sequences, weights, subgroups, alternation, polymeter,
// and the */ ! ? (k,n,r) modifier set.
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package mini

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed mini-notation string; module parameter
// deserialization surfaces it to the control API as a validation error.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mini-notation parse error at byte %d: %s", e.Pos, e.Msg)
}

type parser struct {
	src []rune
	pos int
}

// Parse parses a full mini-notation program string into its AST.
func Parse(src string) (Node, error) {
	p := &parser{src: []rune(src)}
	p.skipSpace()
	node, err := p.parseStackExpr()
	if err != nil {
		return Node{}, err
	}
	for {
		p.skipSpace()
		if !p.consume('$') {
			break
		}
		p.skipSpace()
		op, err := p.parseOperatorCall(node)
		if err != nil {
			return Node{}, err
		}
		node = op
	}
	p.skipSpace()
	if !p.atEnd() {
		return Node{}, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected trailing input %q", string(p.src[p.pos:]))}
	}
	return node, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) consume(r rune) bool {
	if p.peek() == r {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.atEnd() {
		r := p.src[p.pos]
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func isIdentRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-' || r == '#' || r == '\''
}

// stack_expr := sequence (',' sequence)*
func (p *parser) parseStackExpr() (Node, error) {
	start := p.pos
	first, err := p.parseSequence()
	if err != nil {
		return Node{}, err
	}
	seqs := []Node{first}
	for {
		save := p.pos
		p.skipSpace()
		if !p.consume(',') {
			p.pos = save
			break
		}
		p.skipSpace()
		next, err := p.parseSequence()
		if err != nil {
			return Node{}, err
		}
		seqs = append(seqs, next)
	}
	if len(seqs) == 1 {
		return seqs[0], nil
	}
	return Node{Kind: KindStack, Elems: seqs, Span: SourceSpan{Start: start, End: p.pos}}, nil
}

// sequence := weighted_elem+, terminated by one of ',' ']' '>' '}' '$' EOF
func (p *parser) parseSequence() (Node, error) {
	start := p.pos
	var elems []Node
	var weights []float64
	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		r := p.peek()
		if r == ',' || r == ']' || r == '>' || r == '}' || r == '$' || r == ')' {
			break
		}
		elem, weight, err := p.parseWeightedElem()
		if err != nil {
			return Node{}, err
		}
		elems = append(elems, elem)
		weights = append(weights, weight)
	}
	if len(elems) == 0 {
		return Node{}, &ParseError{Pos: p.pos, Msg: "expected at least one element in sequence"}
	}
	return Node{Kind: KindSequence, Elems: elems, Weights: weights, Span: SourceSpan{Start: start, End: p.pos}}, nil
}

// weighted_elem := element modifier* ('@' number)?
func (p *parser) parseWeightedElem() (Node, float64, error) {
	elem, err := p.parseElementWithModifiers()
	if err != nil {
		return Node{}, 0, err
	}
	weight := 1.0
	save := p.pos
	if p.consume('@') {
		n, err := p.parseNumberLiteral()
		if err != nil {
			p.pos = save
		} else {
			weight = n
		}
	}
	return elem, weight, nil
}

func (p *parser) parseElementWithModifiers() (Node, error) {
	elem, err := p.parseElement()
	if err != nil {
		return Node{}, err
	}
	for {
		// prev is a fresh copy each pass, so a modifier node never points
		// at itself through elem.
		prev := elem
		switch p.peek() {
		case '*':
			p.pos++
			factor, err := p.parseSliceElement()
			if err != nil {
				return Node{}, err
			}
			elem = Node{Kind: KindFast, Inner: &prev, Factor: &factor}
		case '/':
			p.pos++
			factor, err := p.parseSliceElement()
			if err != nil {
				return Node{}, err
			}
			elem = Node{Kind: KindSlow, Inner: &prev, Factor: &factor}
		case '!':
			p.pos++
			n, err := p.parseIntLiteral()
			if err != nil {
				return Node{}, err
			}
			elem = Node{Kind: KindReplicate, Inner: &prev, Count: n}
		case '?':
			p.pos++
			hasProb := false
			prob := 0.5
			if isDigitStart(p.peek()) {
				v, err := p.parseNumberLiteral()
				if err != nil {
					return Node{}, err
				}
				prob, hasProb = v, true
			}
			elem = Node{Kind: KindDegrade, Inner: &prev, HasProb: hasProb, Prob: prob}
		case '(':
			p.pos++
			k, err := p.parseElement()
			if err != nil {
				return Node{}, err
			}
			p.skipSpace()
			if !p.consume(',') {
				return Node{}, &ParseError{Pos: p.pos, Msg: "expected ',' in euclidean modifier"}
			}
			p.skipSpace()
			n, err := p.parseElement()
			if err != nil {
				return Node{}, err
			}
			var rot *Node
			p.skipSpace()
			if p.consume(',') {
				p.skipSpace()
				r, err := p.parseElement()
				if err != nil {
					return Node{}, err
				}
				rot = &r
			}
			p.skipSpace()
			if !p.consume(')') {
				return Node{}, &ParseError{Pos: p.pos, Msg: "expected ')' closing euclidean modifier"}
			}
			elem = Node{Kind: KindEuclidean, Inner: &prev, K: &k, N: &n, R: rot}
		default:
			return elem, nil
		}
	}
}

// parseSliceElement parses the argument of * or /: a bare number or a
// bracketed/angled sub-pattern of factors.
func (p *parser) parseSliceElement() (Node, error) {
	if p.peek() == '[' || p.peek() == '<' {
		return p.parseElement()
	}
	n, err := p.parseNumberLiteral()
	if err != nil {
		return Node{}, err
	}
	return Node{Kind: KindAtom, Atom: Atom{Kind: AtomNumber, Num: n}}, nil
}

func isDigitStart(r rune) bool {
	return r >= '0' && r <= '9' || r == '-' || r == '.'
}

// element := value | '[' stack_expr ']' | '<' sequence '>' | '{' sequence (',' sequence)* '}'
func (p *parser) parseElement() (Node, error) {
	start := p.pos
	switch p.peek() {
	case '[':
		p.pos++
		p.skipSpace()
		inner, err := p.parseStackExpr()
		if err != nil {
			return Node{}, err
		}
		p.skipSpace()
		if !p.consume(']') {
			return Node{}, &ParseError{Pos: p.pos, Msg: "expected ']'"}
		}
		inner.Span = SourceSpan{Start: start, End: p.pos}
		return inner, nil
	case '<':
		p.pos++
		p.skipSpace()
		seq, err := p.parseSequence()
		if err != nil {
			return Node{}, err
		}
		p.skipSpace()
		if !p.consume('>') {
			return Node{}, &ParseError{Pos: p.pos, Msg: "expected '>'"}
		}
		return Node{Kind: KindAlternation, Seqs: seq.Elems, Span: SourceSpan{Start: start, End: p.pos}}, nil
	case '{':
		p.pos++
		p.skipSpace()
		var seqs []Node
		first, err := p.parseSequence()
		if err != nil {
			return Node{}, err
		}
		seqs = append(seqs, first)
		for {
			p.skipSpace()
			if !p.consume(',') {
				break
			}
			p.skipSpace()
			next, err := p.parseSequence()
			if err != nil {
				return Node{}, err
			}
			seqs = append(seqs, next)
		}
		p.skipSpace()
		if !p.consume('}') {
			return Node{}, &ParseError{Pos: p.pos, Msg: "expected '}'"}
		}
		var steps *int
		if p.consume('%') {
			n, err := p.parseIntLiteral()
			if err != nil {
				return Node{}, err
			}
			steps = &n
		}
		return Node{Kind: KindPolyMeter, Seqs: seqs, PolySteps: steps, Span: SourceSpan{Start: start, End: p.pos}}, nil
	default:
		return p.parseValue()
	}
}

// value := number | midi | hz | note | identifier | '~'
func (p *parser) parseValue() (Node, error) {
	start := p.pos
	if p.consume('~') {
		return Node{Kind: KindAtom, Atom: Atom{Kind: AtomRest, Span: SourceSpan{Start: start, End: p.pos}}}, nil
	}
	text := p.readIdentLike()
	if text == "" {
		return Node{}, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected character %q", string(p.peek()))}
	}
	span := SourceSpan{Start: start, End: p.pos}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Node{Kind: KindAtom, Atom: Atom{Kind: AtomNumber, Num: n, Text: text, Span: span}}, nil
	}
	return Node{Kind: KindAtom, Atom: Atom{Kind: AtomIdentifier, Text: text, Span: span}}, nil
}

func (p *parser) readIdentLike() string {
	start := p.pos
	for !p.atEnd() && isIdentRune(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) parseNumberLiteral() (float64, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := 0
	for !p.atEnd() && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
		digits++
	}
	if digits == 0 {
		return 0, &ParseError{Pos: p.pos, Msg: "expected number"}
	}
	return strconv.ParseFloat(string(p.src[start:p.pos]), 64)
}

func (p *parser) parseIntLiteral() (int, error) {
	f, err := p.parseNumberLiteral()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseOperatorCall parses `name('.'sub)? '(' pattern ')'` and wraps prev.
func (p *parser) parseOperatorCall(prev Node) (Node, error) {
	name := p.readIdentLike()
	if name == "" {
		return Node{}, &ParseError{Pos: p.pos, Msg: "expected operator name after '$'"}
	}
	parts := strings.SplitN(name, ".", 2)
	opName := parts[0]
	opSub := ""
	if len(parts) == 2 {
		opSub = parts[1]
	}
	p.skipSpace()
	if !p.consume('(') {
		return Node{}, &ParseError{Pos: p.pos, Msg: "expected '(' after operator name"}
	}
	p.skipSpace()
	var args []Node
	if p.peek() != ')' {
		arg, err := p.parseStackExpr()
		if err != nil {
			return Node{}, err
		}
		args = append(args, arg)
		for {
			p.skipSpace()
			if !p.consume(',') {
				break
			}
			p.skipSpace()
			next, err := p.parseStackExpr()
			if err != nil {
				return Node{}, err
			}
			args = append(args, next)
		}
	}
	p.skipSpace()
	if !p.consume(')') {
		return Node{}, &ParseError{Pos: p.pos, Msg: "expected ')' closing operator call"}
	}
	prevCopy := prev
	return Node{Kind: KindOperator, OpName: opName, OpSub: opSub, OpArgs: args, OperInner: &prevCopy}, nil
}

package sfs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError describes malformed WKT or WKB input. Err is one of the
// package sentinels and is reachable through errors.Is.
type ParseError struct {
	// Format is "WKT" or "WKB".
	Format string
	// Pos is a character offset for WKT and a byte offset for WKB.
	Pos    int
	Input  string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Format == "WKT" {
		return fmt.Sprintf("%s at pos %d\n%s\n%s^", msg, e.Pos, e.Input, strings.Repeat(" ", e.Pos))
	}
	return fmt.Sprintf("%s at offset %d", msg, e.Pos)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseWKT decodes WKT with an optional "SRID=n;" prefix. It returns an
// error wrapping one of the package sentinels for malformed input, and
// (nil, nil) when the input is well formed but the geometry is invalid.
func (f *Factory) ParseWKT(s string) (Geometry, error) {
	raw, srid, err := parseWKT(s)
	if err != nil {
		return nil, err
	}
	if err := f.checkSRID(srid); err != nil {
		return nil, err
	}
	return f.build(raw), nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokEquals
	tokSemicolon
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// wktLexer splits WKT into tokens. Words are returned upper-cased.
type wktLexer struct {
	input string
	pos   int
}

func (l *wktLexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: start}, nil
	}

	switch ch := l.input[l.pos]; {
	case ch == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case ch == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case ch == '=':
		l.pos++
		return token{kind: tokEquals, text: "=", pos: start}, nil
	case ch == ';':
		l.pos++
		return token{kind: tokSemicolon, text: ";", pos: start}, nil
	case isLetter(ch):
		for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokWord, text: strings.ToUpper(l.input[start:l.pos]), pos: start}, nil
	case ch == '+' || ch == '-' || ch == '.' || isDigit(ch):
		return l.number(start)
	}
	return token{}, l.errorf(start, ErrSyntax, "unexpected character %q", l.input[start])
}

func (l *wktLexer) number(start int) (token, error) {
	if c := l.input[l.pos]; c == '+' || c == '-' {
		l.pos++
	}
	digits := l.digits()
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		digits += l.digits()
	}
	if digits == 0 {
		return token{}, l.errorf(start, ErrSyntax, "invalid number")
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.digits() == 0 {
			return token{}, l.errorf(start, ErrSyntax, "invalid exponent")
		}
	}
	text := l.input[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, l.errorf(start, ErrSyntax, "invalid number %q", text)
	}
	return token{kind: tokNumber, text: text, num: v, pos: start}, nil
}

func (l *wktLexer) digits() int {
	n := 0
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
		n++
	}
	return n
}

func (l *wktLexer) errorf(pos int, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Format: "WKT",
		Pos:    pos,
		Input:  l.input,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

var wktTypes = map[string]Type{
	"POINT":              TypePoint,
	"LINESTRING":         TypeLineString,
	"LINEARRING":         TypeLinearRing,
	"POLYGON":            TypePolygon,
	"MULTIPOINT":         TypeMultiPoint,
	"MULTILINESTRING":    TypeMultiLineString,
	"MULTIPOLYGON":       TypeMultiPolygon,
	"GEOMETRYCOLLECTION": TypeGeometryCollection,
}

// wktParser is a recursive descent parser over wktLexer with one token of
// lookahead. The coordinate layout is fixed by the first dimension
// modifier or the first coordinate and must hold for the whole input.
type wktParser struct {
	lex       wktLexer
	tok       token
	depth     int
	layout    Layout
	layoutSet bool
}

// parseWKT parses an optionally SRID-prefixed WKT string.
func parseWKT(s string) (raw *rawGeometry, srid int, err error) {
	p := &wktParser{lex: wktLexer{input: s}}
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	if p.tok.kind == tokWord && p.tok.text == "SRID" {
		if srid, err = p.srid(); err != nil {
			return nil, 0, err
		}
	}
	if raw, err = p.geometry(); err != nil {
		return nil, 0, err
	}
	switch p.tok.kind {
	case tokEOF:
		return raw, srid, nil
	case tokRParen:
		return nil, 0, p.errorf(ErrUnbalanced, "unexpected ')'")
	}
	return nil, 0, p.errorf(ErrTrailingData, "unexpected %q", p.tok.text)
}

func (p *wktParser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *wktParser) errorf(err error, format string, args ...any) *ParseError {
	return p.lex.errorf(p.tok.pos, err, format, args...)
}

// expect consumes a token of the given kind.
func (p *wktParser) expect(kind tokenKind, what string) error {
	if p.tok.kind != kind {
		if p.tok.kind == tokEOF && kind == tokRParen {
			return p.errorf(ErrUnbalanced, "missing ')'")
		}
		if p.tok.kind == tokEOF {
			return p.errorf(ErrSyntax, "expected %s, got end of input", what)
		}
		return p.errorf(ErrSyntax, "expected %s, got %q", what, p.tok.text)
	}
	return p.advance()
}

// srid parses "SRID=<int>;".
func (p *wktParser) srid() (int, error) {
	if err := p.advance(); err != nil {
		return 0, err
	}
	if err := p.expect(tokEquals, "'='"); err != nil {
		return 0, err
	}
	if p.tok.kind != tokNumber {
		return 0, p.errorf(ErrSyntax, "expected srid value")
	}
	srid, err := strconv.Atoi(p.tok.text)
	if err != nil {
		return 0, p.errorf(ErrSyntax, "invalid srid %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	if err := p.expect(tokSemicolon, "';'"); err != nil {
		return 0, err
	}
	return srid, nil
}

// tagged splits a keyword like "POINTZ" into its type and modifier.
func tagged(word string) (Type, string, bool) {
	if t, ok := wktTypes[word]; ok {
		return t, "", true
	}
	for _, suffix := range [...]string{"ZM", "Z", "M"} {
		if base, found := strings.CutSuffix(word, suffix); found {
			if t, ok := wktTypes[base]; ok {
				return t, suffix, true
			}
		}
	}
	return 0, "", false
}

func (p *wktParser) setLayout(l Layout) error {
	if p.layoutSet && l != p.layout {
		return p.errorf(ErrArity, "mixed dimensionality %s and %s", p.layout, l)
	}
	p.layout, p.layoutSet = l, true
	return nil
}

func (p *wktParser) geometry() (*rawGeometry, error) {
	if p.tok.kind != tokWord {
		if p.tok.kind == tokEOF {
			return nil, p.errorf(ErrSyntax, "expected geometry type, got end of input")
		}
		return nil, p.errorf(ErrSyntax, "expected geometry type, got %q", p.tok.text)
	}
	typ, modifier, ok := tagged(p.tok.text)
	if !ok {
		return nil, p.errorf(ErrUnknownType, "%q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if modifier == "" && p.tok.kind == tokWord {
		switch p.tok.text {
		case "Z", "M", "ZM":
			modifier = p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if modifier != "" {
		if err := p.setLayout(layoutFor(strings.Contains(modifier, "Z"), strings.Contains(modifier, "M"))); err != nil {
			return nil, err
		}
	}

	raw := &rawGeometry{typ: typ}
	if p.tok.kind == tokWord && p.tok.text == "EMPTY" {
		raw.empty = true
		return raw, p.advance()
	}
	if p.tok.kind != tokLParen {
		return nil, p.expect(tokLParen, "'(' or EMPTY")
	}

	var err error
	switch typ {
	case TypePoint:
		if err = p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		var c Coord
		if c, err = p.coord(); err != nil {
			return nil, err
		}
		raw.coords = []Coord{c}
		err = p.expect(tokRParen, "')'")
	case TypeLineString, TypeLinearRing:
		raw.coords, err = p.coordList()
	case TypePolygon:
		raw.rings, err = p.rings()
	case TypeMultiPoint:
		raw.parts, err = p.multiPoint()
	case TypeMultiLineString:
		raw.parts, err = p.list(func() (*rawGeometry, error) {
			part := &rawGeometry{typ: TypeLineString}
			if p.tok.kind == tokWord && p.tok.text == "EMPTY" {
				return part, p.advance()
			}
			var err error
			part.coords, err = p.coordList()
			return part, err
		})
	case TypeMultiPolygon:
		raw.parts, err = p.list(func() (*rawGeometry, error) {
			part := &rawGeometry{typ: TypePolygon}
			if p.tok.kind == tokWord && p.tok.text == "EMPTY" {
				return part, p.advance()
			}
			var err error
			part.rings, err = p.rings()
			return part, err
		})
	case TypeGeometryCollection:
		if p.depth++; p.depth > maxNesting {
			return nil, p.errorf(ErrTooDeep, "more than %d levels", maxNesting)
		}
		raw.parts, err = p.list(p.geometry)
		p.depth--
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// list parses "(elem, elem, ...)".
func (p *wktParser) list(elem func() (*rawGeometry, error)) ([]*rawGeometry, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var parts []*rawGeometry
	for {
		part, err := elem()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return parts, nil
}

// multiPoint accepts both MULTIPOINT (1 2, 3 4) and MULTIPOINT ((1 2), (3 4)),
// as well as EMPTY elements.
func (p *wktParser) multiPoint() ([]*rawGeometry, error) {
	return p.list(func() (*rawGeometry, error) {
		part := &rawGeometry{typ: TypePoint}
		switch p.tok.kind {
		case tokWord:
			if p.tok.text != "EMPTY" {
				return nil, p.errorf(ErrSyntax, "expected point, got %q", p.tok.text)
			}
			part.empty = true
			return part, p.advance()
		case tokLParen:
			if err := p.advance(); err != nil {
				return nil, err
			}
			c, err := p.coord()
			if err != nil {
				return nil, err
			}
			part.coords = []Coord{c}
			return part, p.expect(tokRParen, "')'")
		}
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		part.coords = []Coord{c}
		return part, nil
	})
}

func (p *wktParser) rings() ([][]Coord, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var rings [][]Coord
	for {
		ring, err := p.coordList()
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return rings, nil
}

// coordList parses "(x y, x y, ...)".
func (p *wktParser) coordList() ([]Coord, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var cs []Coord
	for {
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return cs, nil
}

// coord parses two to four ordinates. The first coordinate of an input
// without a modifier decides the layout: 3 ordinates mean XYZ and 4 XYZM.
func (p *wktParser) coord() (Coord, error) {
	start := p.tok
	var ords [4]float64
	n := 0
	for p.tok.kind == tokNumber {
		if n == len(ords) {
			return Coord{}, p.errorf(ErrArity, "more than %d ordinates", len(ords))
		}
		ords[n] = p.tok.num
		n++
		if err := p.advance(); err != nil {
			return Coord{}, err
		}
	}
	if n == 0 {
		if p.tok.kind == tokEOF {
			return Coord{}, p.errorf(ErrUnbalanced, "missing ')'")
		}
		return Coord{}, p.errorf(ErrSyntax, "expected number, got %q", p.tok.text)
	}
	if !p.layoutSet {
		switch n {
		case 2:
			p.layout = XY
		case 3:
			p.layout = XYZ
		case 4:
			p.layout = XYZM
		default:
			return Coord{}, p.lex.errorf(start.pos, ErrArity, "expected at least 2 ordinates, got %d", n)
		}
		p.layoutSet = true
	}
	if n != p.layout.Stride() {
		return Coord{}, p.lex.errorf(start.pos, ErrArity, "expected %d ordinates, got %d", p.layout.Stride(), n)
	}
	return coordFromOrdinates(ords[:n], p.layout), nil
}

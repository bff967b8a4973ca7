package internal

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Analyzer walks the same grammar as the CompilationEngine but writes the parse tree as
// markup instead of vm code: one element per grammar rule, one line per token. Names are
// not resolved, so any syntactically valid class can be analyzed.
type Analyzer struct {
	cursor *TokenCursor
	output *bytes.Buffer
	depth  int
}

// Analyze writes the parse tree of the class read from `rd` to `w`. Nothing is written when
// the class has an error.
func Analyze(rd io.Reader, w io.Writer) error {
	tokens, err := Tokenize(rd)
	if err != nil {
		return err
	}
	analyzer := &Analyzer{cursor: NewTokenCursor(tokens), output: &bytes.Buffer{}}
	if err = analyzer.analyzeClass(); err != nil {
		return err
	}
	_, err = w.Write(analyzer.output.Bytes())
	return err
}

// WriteTokens writes the flat token listing of the source read from `rd` to `w`.
func WriteTokens(rd io.Reader, w io.Writer) error {
	tokens, err := Tokenize(rd)
	if err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	buf.WriteString("<tokens>\n")
	for _, token := range tokens {
		writeTokenElement(buf, "", token)
	}
	buf.WriteString("</tokens>\n")
	_, err = w.Write(buf.Bytes())
	return err
}

// writeTokenElement writes `<type> content </type>`, string constants without their quotes.
func writeTokenElement(buf *bytes.Buffer, indent string, token *Token) {
	content := token.Content
	if token.Type == StringConstantTP {
		content = token.StringVal()
	}
	escaped := &strings.Builder{}
	// Writing to a strings.Builder never fails.
	_ = xml.EscapeText(escaped, []byte(content))
	buf.WriteString(indent + "<" + token.Type.String() + "> " + escaped.String() + " </" + token.Type.String() + ">\n")
}

func (analyzer *Analyzer) indent() string {
	return strings.Repeat("  ", analyzer.depth)
}

func (analyzer *Analyzer) open(tag string) {
	analyzer.output.WriteString(analyzer.indent() + "<" + tag + ">\n")
	analyzer.depth++
}

func (analyzer *Analyzer) close(tag string) {
	analyzer.depth--
	analyzer.output.WriteString(analyzer.indent() + "</" + tag + ">\n")
}

func (analyzer *Analyzer) emit(token *Token) {
	writeTokenElement(analyzer.output, analyzer.indent(), token)
}

func (analyzer *Analyzer) makeError(expected string) error {
	return &SyntaxError{Expected: expected, Token: analyzer.cursor.Current()}
}

// expect consumes the next token, writes it when `accept` takes it and fails otherwise.
func (analyzer *Analyzer) expect(expected string, accept func(*Token) bool) (*Token, error) {
	token, err := analyzer.cursor.Advance()
	if err != nil {
		return nil, err
	}
	if !accept(token) {
		return nil, analyzer.makeError(expected)
	}
	analyzer.emit(token)
	return token, nil
}

func (analyzer *Analyzer) expectSymbol(symbol string) error {
	_, err := analyzer.expect("'"+symbol+"'", func(token *Token) bool { return token.IsSymbol(symbol) })
	return err
}

func (analyzer *Analyzer) expectIdentifier(what string) error {
	_, err := analyzer.expect(what, func(token *Token) bool { return token.Type == IdentifierTP })
	return err
}

func (analyzer *Analyzer) expectType() error {
	_, err := analyzer.expect("int|char|boolean|className", isType)
	return err
}

func isType(token *Token) bool {
	return token.Type == IdentifierTP || (token.Type == KeywordTP && primitiveTypes[token.Content])
}

// peek returns the next token without consuming it.
func (analyzer *Analyzer) peek() (*Token, error) {
	token, err := analyzer.cursor.Advance()
	if err != nil {
		return nil, err
	}
	analyzer.cursor.Retreat()
	return token, nil
}

func (analyzer *Analyzer) analyzeClass() error {
	analyzer.open("class")
	if _, err := analyzer.expect("'class'", func(token *Token) bool { return token.IsKeyword("class") }); err != nil {
		return err
	}
	if err := analyzer.expectIdentifier("className"); err != nil {
		return err
	}
	if err := analyzer.expectSymbol("{"); err != nil {
		return err
	}
	for {
		token, err := analyzer.peek()
		if err != nil {
			return err
		}
		if !token.IsKeyword("static") && !token.IsKeyword("field") {
			break
		}
		if err = analyzer.analyzeVarDec("classVarDec"); err != nil {
			return err
		}
	}
	for {
		token, err := analyzer.peek()
		if err != nil {
			return err
		}
		if token.IsSymbol("}") {
			break
		}
		if err = analyzer.analyzeSubroutineDec(); err != nil {
			return err
		}
	}
	if err := analyzer.expectSymbol("}"); err != nil {
		return err
	}
	analyzer.close("class")
	if analyzer.cursor.HasMoreTokens() {
		token, _ := analyzer.cursor.Advance()
		return &TrailingInputError{Token: token}
	}
	return nil
}

// analyzeVarDec handles both `(static | field) type varName, ... ;` and `var type varName, ... ;`,
// the leading keyword has been checked by the caller.
func (analyzer *Analyzer) analyzeVarDec(tag string) error {
	analyzer.open(tag)
	token, err := analyzer.cursor.Advance()
	if err != nil {
		return err
	}
	analyzer.emit(token)
	if err = analyzer.expectType(); err != nil {
		return err
	}
	for {
		if err = analyzer.expectIdentifier("varName"); err != nil {
			return err
		}
		token, err = analyzer.expect("',' or ';'", func(token *Token) bool {
			return token.IsSymbol(",") || token.IsSymbol(";")
		})
		if err != nil {
			return err
		}
		if token.IsSymbol(";") {
			break
		}
	}
	analyzer.close(tag)
	return nil
}

func (analyzer *Analyzer) analyzeSubroutineDec() error {
	analyzer.open("subroutineDec")
	_, err := analyzer.expect("constructor|function|method", func(token *Token) bool {
		return token.IsKeyword("constructor") || token.IsKeyword("function") || token.IsKeyword("method")
	})
	if err != nil {
		return err
	}
	_, err = analyzer.expect("void|type", func(token *Token) bool { return token.IsKeyword("void") || isType(token) })
	if err != nil {
		return err
	}
	if err = analyzer.expectIdentifier("subroutineName"); err != nil {
		return err
	}
	if err = analyzer.expectSymbol("("); err != nil {
		return err
	}
	if err = analyzer.analyzeParameterList(); err != nil {
		return err
	}
	if err = analyzer.expectSymbol(")"); err != nil {
		return err
	}

	analyzer.open("subroutineBody")
	if err = analyzer.expectSymbol("{"); err != nil {
		return err
	}
	for {
		token, err := analyzer.peek()
		if err != nil {
			return err
		}
		if !token.IsKeyword("var") {
			break
		}
		if err = analyzer.analyzeVarDec("varDec"); err != nil {
			return err
		}
	}
	if err = analyzer.analyzeStatements(); err != nil {
		return err
	}
	if err = analyzer.expectSymbol("}"); err != nil {
		return err
	}
	analyzer.close("subroutineBody")
	analyzer.close("subroutineDec")
	return nil
}

func (analyzer *Analyzer) analyzeParameterList() error {
	analyzer.open("parameterList")
	token, err := analyzer.peek()
	if err != nil {
		return err
	}
	for !token.IsSymbol(")") {
		if err = analyzer.expectType(); err != nil {
			return err
		}
		if err = analyzer.expectIdentifier("varName"); err != nil {
			return err
		}
		if token, err = analyzer.cursor.Advance(); err != nil {
			return err
		}
		switch {
		case token.IsSymbol(","):
			analyzer.emit(token)
		case token.IsSymbol(")"):
			analyzer.cursor.Retreat()
		default:
			return analyzer.makeError("',' or ')'")
		}
	}
	analyzer.close("parameterList")
	return nil
}

func (analyzer *Analyzer) analyzeStatements() error {
	analyzer.open("statements")
	for {
		token, err := analyzer.cursor.Advance()
		if err != nil {
			return err
		}
		if token.IsSymbol("}") {
			analyzer.cursor.Retreat()
			break
		}
		if token.Type != KeywordTP {
			return analyzer.makeError("'let'|'if'|'while'|'do'|'return'")
		}
		switch token.Content {
		case "let":
			err = analyzer.analyzeLet(token)
		case "if":
			err = analyzer.analyzeIf(token)
		case "while":
			err = analyzer.analyzeWhile(token)
		case "do":
			err = analyzer.analyzeDo(token)
		case "return":
			err = analyzer.analyzeReturn(token)
		default:
			err = analyzer.makeError("'let'|'if'|'while'|'do'|'return'")
		}
		if err != nil {
			return err
		}
	}
	analyzer.close("statements")
	return nil
}

func (analyzer *Analyzer) analyzeLet(keyword *Token) error {
	analyzer.open("letStatement")
	analyzer.emit(keyword)
	if err := analyzer.expectIdentifier("varName"); err != nil {
		return err
	}
	token, err := analyzer.expect("'['|'='", func(token *Token) bool { return token.IsSymbol("[") || token.IsSymbol("=") })
	if err != nil {
		return err
	}
	if token.IsSymbol("[") {
		if err = analyzer.analyzeExpression(); err != nil {
			return err
		}
		if err = analyzer.expectSymbol("]"); err != nil {
			return err
		}
		if err = analyzer.expectSymbol("="); err != nil {
			return err
		}
	}
	if err = analyzer.analyzeExpression(); err != nil {
		return err
	}
	if err = analyzer.expectSymbol(";"); err != nil {
		return err
	}
	analyzer.close("letStatement")
	return nil
}

// analyzeConditionalBlock handles `( expression ) { statements }`, shared by if and while.
func (analyzer *Analyzer) analyzeConditionalBlock() error {
	if err := analyzer.expectSymbol("("); err != nil {
		return err
	}
	if err := analyzer.analyzeExpression(); err != nil {
		return err
	}
	if err := analyzer.expectSymbol(")"); err != nil {
		return err
	}
	return analyzer.analyzeBlock()
}

func (analyzer *Analyzer) analyzeBlock() error {
	if err := analyzer.expectSymbol("{"); err != nil {
		return err
	}
	if err := analyzer.analyzeStatements(); err != nil {
		return err
	}
	return analyzer.expectSymbol("}")
}

func (analyzer *Analyzer) analyzeIf(keyword *Token) error {
	analyzer.open("ifStatement")
	analyzer.emit(keyword)
	if err := analyzer.analyzeConditionalBlock(); err != nil {
		return err
	}
	token, err := analyzer.cursor.Advance()
	if err != nil {
		return err
	}
	if token.IsKeyword("else") {
		analyzer.emit(token)
		if err = analyzer.analyzeBlock(); err != nil {
			return err
		}
	} else {
		analyzer.cursor.Retreat()
	}
	analyzer.close("ifStatement")
	return nil
}

func (analyzer *Analyzer) analyzeWhile(keyword *Token) error {
	analyzer.open("whileStatement")
	analyzer.emit(keyword)
	if err := analyzer.analyzeConditionalBlock(); err != nil {
		return err
	}
	analyzer.close("whileStatement")
	return nil
}

func (analyzer *Analyzer) analyzeDo(keyword *Token) error {
	analyzer.open("doStatement")
	analyzer.emit(keyword)
	token, err := analyzer.expect("subroutineName|className|varName", func(token *Token) bool {
		return token.Type == IdentifierTP
	})
	if err != nil {
		return err
	}
	next, err := analyzer.cursor.Advance()
	if err != nil {
		return err
	}
	if err = analyzer.analyzeSubroutineCall(token, next); err != nil {
		return err
	}
	if err = analyzer.expectSymbol(";"); err != nil {
		return err
	}
	analyzer.close("doStatement")
	return nil
}

func (analyzer *Analyzer) analyzeReturn(keyword *Token) error {
	analyzer.open("returnStatement")
	analyzer.emit(keyword)
	token, err := analyzer.peek()
	if err != nil {
		return err
	}
	if !token.IsSymbol(";") {
		if err = analyzer.analyzeExpression(); err != nil {
			return err
		}
	}
	if err = analyzer.expectSymbol(";"); err != nil {
		return err
	}
	analyzer.close("returnStatement")
	return nil
}

func (analyzer *Analyzer) analyzeExpression() error {
	analyzer.open("expression")
	if err := analyzer.analyzeTerm(); err != nil {
		return err
	}
	for {
		token, err := analyzer.cursor.Advance()
		if err != nil {
			return err
		}
		if !isBinaryOp(token) {
			analyzer.cursor.Retreat()
			break
		}
		analyzer.emit(token)
		if err = analyzer.analyzeTerm(); err != nil {
			return err
		}
	}
	analyzer.close("expression")
	return nil
}

func (analyzer *Analyzer) analyzeTerm() error {
	analyzer.open("term")
	token, err := analyzer.cursor.Advance()
	if err != nil {
		return err
	}
	switch {
	case token.Type == IntegerConstantTP, token.Type == StringConstantTP:
		analyzer.emit(token)
	case token.IsKeyword("true"), token.IsKeyword("false"), token.IsKeyword("null"), token.IsKeyword("this"):
		analyzer.emit(token)
	case token.IsSymbol("("):
		analyzer.emit(token)
		if err = analyzer.analyzeExpression(); err != nil {
			return err
		}
		if err = analyzer.expectSymbol(")"); err != nil {
			return err
		}
	case token.IsSymbol("-"), token.IsSymbol("~"):
		analyzer.emit(token)
		if err = analyzer.analyzeTerm(); err != nil {
			return err
		}
	case token.Type == IdentifierTP:
		analyzer.emit(token)
		if err = analyzer.analyzeNameTerm(token); err != nil {
			return err
		}
	default:
		return analyzer.makeError("term")
	}
	analyzer.close("term")
	return nil
}

// analyzeNameTerm handles what follows a name inside a term: an index, a call or nothing.
func (analyzer *Analyzer) analyzeNameTerm(name *Token) error {
	next, err := analyzer.cursor.Advance()
	if err != nil {
		return err
	}
	switch {
	case next.IsSymbol("["):
		analyzer.emit(next)
		if err = analyzer.analyzeExpression(); err != nil {
			return err
		}
		return analyzer.expectSymbol("]")
	case next.IsSymbol("("), next.IsSymbol("."):
		return analyzer.analyzeSubroutineCall(name, next)
	}
	analyzer.cursor.Retreat()
	return nil
}

// analyzeSubroutineCall continues a call whose name has been written, `next` is the consumed
// token after the name.
func (analyzer *Analyzer) analyzeSubroutineCall(name *Token, next *Token) error {
	switch {
	case next.IsSymbol("("):
		analyzer.emit(next)
	case next.IsSymbol("."):
		analyzer.emit(next)
		if err := analyzer.expectIdentifier("subroutineName"); err != nil {
			return err
		}
		if err := analyzer.expectSymbol("("); err != nil {
			return err
		}
	default:
		return analyzer.makeError("'(' or '.' after " + name.Content)
	}
	if err := analyzer.analyzeExpressionList(); err != nil {
		return err
	}
	return analyzer.expectSymbol(")")
}

func (analyzer *Analyzer) analyzeExpressionList() error {
	analyzer.open("expressionList")
	token, err := analyzer.peek()
	if err != nil {
		return err
	}
	if !token.IsSymbol(")") {
		for {
			if err = analyzer.analyzeExpression(); err != nil {
				return err
			}
			token, err = analyzer.cursor.Advance()
			if err != nil {
				return err
			}
			if !token.IsSymbol(",") {
				analyzer.cursor.Retreat()
				break
			}
			analyzer.emit(token)
		}
	}
	analyzer.close("expressionList")
	return nil
}

package internal

import "fmt"

// The largest integer constant a jack program may write, the vm works on 16 bit words.
const maxIntegerConstant = 32767

var binaryCommands = map[string]Command{
	"+": AddCommand,
	"-": SubCommand,
	"&": AndCommand,
	"|": OrCommand,
	"<": LtCommand,
	">": GtCommand,
	"=": EqCommand,
}

// Multiplication and division have no vm command, they are calls into the os.
var binaryCalls = map[string]string{
	"*": "Math.multiply",
	"/": "Math.divide",
}

var primitiveTypes = map[string]bool{
	"int":     true,
	"char":    true,
	"boolean": true,
}

// CompilationEngine parses one jack class and writes its vm code while parsing. Every grammar
// rule is one method, there is no syntax tree. The engine owns everything a compilation
// needs, so two engines never share state.
type CompilationEngine struct {
	cursor      *TokenCursor
	symbolTable *SymbolTable
	writer      *VMWriter

	className      string
	subroutineName string
	labelIndex     int
}

func NewCompilationEngine(tokens []*Token, writer *VMWriter) *CompilationEngine {
	return &CompilationEngine{
		cursor:      NewTokenCursor(tokens),
		symbolTable: NewSymbolTable(),
		writer:      writer,
	}
}

func (engine *CompilationEngine) currentFunction() string {
	return engine.className + "." + engine.subroutineName
}

// newLabel returns a label no other construct of this file uses.
func (engine *CompilationEngine) newLabel(prefix string) string {
	label := fmt.Sprintf("%s_%d", prefix, engine.labelIndex)
	engine.labelIndex++
	return label
}

func (engine *CompilationEngine) makeError(expected string) error {
	return &SyntaxError{Expected: expected, Token: engine.cursor.Current()}
}

func (engine *CompilationEngine) expectSymbol(symbol string) error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if !token.IsSymbol(symbol) {
		return engine.makeError("'" + symbol + "'")
	}
	return nil
}

func (engine *CompilationEngine) expectIdentifier(what string) (*Token, error) {
	token, err := engine.cursor.Advance()
	if err != nil {
		return nil, err
	}
	if token.Type != IdentifierTP {
		return nil, engine.makeError(what)
	}
	return token, nil
}

// class className { classVarDec* subroutineDec* }
func (engine *CompilationEngine) CompileClass() error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if !token.IsKeyword("class") {
		return engine.makeError("'class'")
	}
	classNameToken, err := engine.expectIdentifier("className")
	if err != nil {
		return err
	}
	engine.className = classNameToken.Content
	engine.symbolTable.Reset()

	if err = engine.expectSymbol("{"); err != nil {
		return err
	}
	if err = engine.compileClassVarDecs(); err != nil {
		return err
	}
	if err = engine.compileSubroutines(); err != nil {
		return err
	}
	if err = engine.expectSymbol("}"); err != nil {
		return err
	}
	if engine.cursor.HasMoreTokens() {
		token, _ = engine.cursor.Advance()
		return &TrailingInputError{Token: token}
	}
	return nil
}

// int | char | boolean | className
func (engine *CompilationEngine) compileType() (string, error) {
	token, err := engine.cursor.Advance()
	if err != nil {
		return "", err
	}
	if token.Type == IdentifierTP || (token.Type == KeywordTP && primitiveTypes[token.Content]) {
		return token.Content, nil
	}
	return "", engine.makeError("int|char|boolean|className")
}

// (static | field) type varName (, varName)* ;
func (engine *CompilationEngine) compileClassVarDecs() error {
	for {
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		kind := StaticKind
		switch {
		case token.IsKeyword("static"):
		case token.IsKeyword("field"):
			kind = FieldKind
		default:
			engine.cursor.Retreat()
			return nil
		}
		tp, err := engine.compileType()
		if err != nil {
			return err
		}
		if err = engine.compileVarNames(tp, kind); err != nil {
			return err
		}
	}
}

// varName (, varName)* ; every name is defined as soon as it is read.
func (engine *CompilationEngine) compileVarNames(tp string, kind Kind) error {
	for {
		nameToken, err := engine.expectIdentifier("varName")
		if err != nil {
			return err
		}
		engine.symbolTable.Define(nameToken.Content, tp, kind)
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		switch {
		case token.IsSymbol(";"):
			return nil
		case token.IsSymbol(","):
		default:
			return engine.makeError("',' or ';'")
		}
	}
}

func (engine *CompilationEngine) compileSubroutines() error {
	for {
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		if token.IsSymbol("}") {
			engine.cursor.Retreat()
			return nil
		}
		if !token.IsKeyword("constructor") && !token.IsKeyword("function") && !token.IsKeyword("method") {
			return engine.makeError("constructor|function|method")
		}
		if err = engine.compileSubroutine(token.Content); err != nil {
			return err
		}
	}
}

// (constructor | function | method) (void | type) subroutineName ( parameterList ) subroutineBody
func (engine *CompilationEngine) compileSubroutine(subroutineKind string) error {
	engine.symbolTable.StartSubroutine()
	// The receiver of a method is passed as argument 0.
	if subroutineKind == "method" {
		engine.symbolTable.Define("this", engine.className, ArgumentKind)
	}

	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if !token.IsKeyword("void") {
		engine.cursor.Retreat()
		if _, err = engine.compileType(); err != nil {
			return err
		}
	}
	nameToken, err := engine.expectIdentifier("subroutineName")
	if err != nil {
		return err
	}
	engine.subroutineName = nameToken.Content

	if err = engine.expectSymbol("("); err != nil {
		return err
	}
	if err = engine.compileParameterList(); err != nil {
		return err
	}
	if err = engine.expectSymbol(")"); err != nil {
		return err
	}
	return engine.compileSubroutineBody(subroutineKind)
}

// ((type varName) (, type varName)*)?
func (engine *CompilationEngine) compileParameterList() error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	engine.cursor.Retreat()
	if token.IsSymbol(")") {
		return nil
	}
	for {
		tp, err := engine.compileType()
		if err != nil {
			return err
		}
		nameToken, err := engine.expectIdentifier("varName")
		if err != nil {
			return err
		}
		engine.symbolTable.Define(nameToken.Content, tp, ArgumentKind)

		token, err = engine.cursor.Advance()
		if err != nil {
			return err
		}
		switch {
		case token.IsSymbol(","):
		case token.IsSymbol(")"):
			engine.cursor.Retreat()
			return nil
		default:
			return engine.makeError("',' or ')'")
		}
	}
}

// { varDec* statements }
func (engine *CompilationEngine) compileSubroutineBody(subroutineKind string) error {
	if err := engine.expectSymbol("{"); err != nil {
		return err
	}
	if err := engine.compileVarDecs(); err != nil {
		return err
	}
	engine.writeFunctionDec(subroutineKind)
	if err := engine.compileStatements(); err != nil {
		return err
	}
	return engine.expectSymbol("}")
}

// var type varName (, varName)* ;
func (engine *CompilationEngine) compileVarDecs() error {
	for {
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		if !token.IsKeyword("var") {
			engine.cursor.Retreat()
			return nil
		}
		tp, err := engine.compileType()
		if err != nil {
			return err
		}
		if err = engine.compileVarNames(tp, LocalKind); err != nil {
			return err
		}
	}
}

// writeFunctionDec writes the function entry once all locals are known. A method binds `this`
// to its first argument, a constructor allocates one word per field and binds `this` to it.
func (engine *CompilationEngine) writeFunctionDec(subroutineKind string) {
	engine.writer.WriteFunction(engine.currentFunction(), engine.symbolTable.VarCount(LocalKind))
	switch subroutineKind {
	case "method":
		engine.writer.WritePush(ArgumentSegment, 0)
		engine.writer.WritePop(PointerSegment, 0)
	case "constructor":
		engine.writer.WritePush(ConstantSegment, engine.symbolTable.VarCount(FieldKind))
		engine.writer.WriteCall("Memory.alloc", 1)
		engine.writer.WritePop(PointerSegment, 0)
	}
}

// statement*, ends before the closing brace of the enclosing block.
func (engine *CompilationEngine) compileStatements() error {
	for {
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		if token.IsSymbol("}") {
			engine.cursor.Retreat()
			return nil
		}
		if token.Type != KeywordTP {
			return engine.makeError("'let'|'if'|'while'|'do'|'return'")
		}
		switch token.Content {
		case "let":
			err = engine.compileLet()
		case "if":
			err = engine.compileIf()
		case "while":
			err = engine.compileWhile()
		case "do":
			err = engine.compileDo()
		case "return":
			err = engine.compileReturn()
		default:
			err = engine.makeError("'let'|'if'|'while'|'do'|'return'")
		}
		if err != nil {
			return err
		}
	}
}

// let varName ([ expression ])? = expression ;
//
// For an array element the address is computed first and stays on the stack while the value
// is computed, the value expression may itself use `that`. Only then is `that` pointed at the
// address:
//
//	push base, index, add, value, pop temp 0, pop pointer 1, push temp 0, pop that 0
func (engine *CompilationEngine) compileLet() error {
	nameToken, err := engine.expectIdentifier("varName")
	if err != nil {
		return err
	}
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	isArray := token.IsSymbol("[")
	if !isArray && !token.IsSymbol("=") {
		return engine.makeError("'['|'='")
	}
	symbol, err := engine.symbolTable.resolve(nameToken.Content)
	if err != nil {
		return err
	}
	if isArray {
		engine.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
		if err = engine.compileExpression(); err != nil {
			return err
		}
		if err = engine.expectSymbol("]"); err != nil {
			return err
		}
		engine.writer.WriteArithmetic(AddCommand)
		if err = engine.expectSymbol("="); err != nil {
			return err
		}
	}

	if err = engine.compileExpression(); err != nil {
		return err
	}
	if err = engine.expectSymbol(";"); err != nil {
		return err
	}

	if isArray {
		engine.writer.WritePop(TempSegment, 0)
		engine.writer.WritePop(PointerSegment, 1)
		engine.writer.WritePush(TempSegment, 0)
		engine.writer.WritePop(ThatSegment, 0)
		return nil
	}
	engine.writer.WritePop(symbol.Kind.Segment(), symbol.Index)
	return nil
}

// if ( expression ) { statements } (else { statements })?
//
// condition, not, if-goto else, statements, goto end, label else, statements, label end
func (engine *CompilationEngine) compileIf() error {
	elseLabel, endLabel := engine.newLabel("IF_ELSE"), engine.newLabel("IF_END")

	if err := engine.compileCondition(); err != nil {
		return err
	}
	engine.writer.WriteIf(elseLabel)
	if err := engine.compileBlock(); err != nil {
		return err
	}
	engine.writer.WriteGoto(endLabel)
	engine.writer.WriteLabel(elseLabel)

	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if token.IsKeyword("else") {
		if err = engine.compileBlock(); err != nil {
			return err
		}
	} else {
		engine.cursor.Retreat()
	}
	engine.writer.WriteLabel(endLabel)
	return nil
}

// while ( expression ) { statements }
//
// label top, condition, not, if-goto end, statements, goto top, label end
func (engine *CompilationEngine) compileWhile() error {
	topLabel, endLabel := engine.newLabel("WHILE_TOP"), engine.newLabel("WHILE_END")

	engine.writer.WriteLabel(topLabel)
	if err := engine.compileCondition(); err != nil {
		return err
	}
	engine.writer.WriteIf(endLabel)
	if err := engine.compileBlock(); err != nil {
		return err
	}
	engine.writer.WriteGoto(topLabel)
	engine.writer.WriteLabel(endLabel)
	return nil
}

// compileCondition compiles ( expression ) and negates it, so that if-goto jumps when the
// condition is false.
func (engine *CompilationEngine) compileCondition() error {
	if err := engine.expectSymbol("("); err != nil {
		return err
	}
	if err := engine.compileExpression(); err != nil {
		return err
	}
	if err := engine.expectSymbol(")"); err != nil {
		return err
	}
	engine.writer.WriteArithmetic(NotCommand)
	return nil
}

// { statements }
func (engine *CompilationEngine) compileBlock() error {
	if err := engine.expectSymbol("{"); err != nil {
		return err
	}
	if err := engine.compileStatements(); err != nil {
		return err
	}
	return engine.expectSymbol("}")
}

// do subroutineCall ; the returned value is thrown away.
func (engine *CompilationEngine) compileDo() error {
	nameToken, err := engine.expectIdentifier("subroutineName|className|varName")
	if err != nil {
		return err
	}
	if err = engine.compileSubroutineCall(nameToken); err != nil {
		return err
	}
	if err = engine.expectSymbol(";"); err != nil {
		return err
	}
	engine.writer.WritePop(TempSegment, 0)
	return nil
}

// return expression? ; a void subroutine returns 0.
func (engine *CompilationEngine) compileReturn() error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if token.IsSymbol(";") {
		engine.writer.WritePush(ConstantSegment, 0)
	} else {
		engine.cursor.Retreat()
		if err = engine.compileExpression(); err != nil {
			return err
		}
		if err = engine.expectSymbol(";"); err != nil {
			return err
		}
	}
	engine.writer.WriteReturn()
	return nil
}

// term (op term)*
//
// Operators have no precedence, `1 + 2 * 3` is (1 + 2) * 3. Each operator is written right
// after its right operand.
func (engine *CompilationEngine) compileExpression() error {
	if err := engine.compileTerm(); err != nil {
		return err
	}
	for {
		token, err := engine.cursor.Advance()
		if err != nil {
			return err
		}
		if !isBinaryOp(token) {
			engine.cursor.Retreat()
			return nil
		}
		if err = engine.compileTerm(); err != nil {
			return err
		}
		engine.writeBinaryOp(token.Content)
	}
}

func isBinaryOp(token *Token) bool {
	if token.Type != SymbolTP {
		return false
	}
	_, isCommand := binaryCommands[token.Content]
	_, isCall := binaryCalls[token.Content]
	return isCommand || isCall
}

func (engine *CompilationEngine) writeBinaryOp(op string) {
	if function, ok := binaryCalls[op]; ok {
		engine.writer.WriteCall(function, 2)
		return
	}
	engine.writer.WriteArithmetic(binaryCommands[op])
}

// integerConstant | stringConstant | keywordConstant | varName | varName [ expression ] |
// subroutineCall | ( expression ) | unaryOp term
func (engine *CompilationEngine) compileTerm() error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	switch token.Type {
	case IntegerConstantTP:
		value, err := token.IntVal()
		if err != nil || value > maxIntegerConstant {
			return engine.makeError(fmt.Sprintf("integer constant in 0..%d", maxIntegerConstant))
		}
		engine.writer.WritePush(ConstantSegment, value)
	case StringConstantTP:
		for _, char := range token.StringVal() {
			if char > maxIntegerConstant {
				return engine.makeError(fmt.Sprintf("string characters with codes in 0..%d", maxIntegerConstant))
			}
		}
		engine.writeStringConstant(token.StringVal())
	case KeywordTP:
		return engine.compileKeywordConstant(token)
	case IdentifierTP:
		return engine.compileVarNameTerm(token)
	case SymbolTP:
		switch token.Content {
		case "(":
			if err = engine.compileExpression(); err != nil {
				return err
			}
			return engine.expectSymbol(")")
		case "-", "~":
			if err = engine.compileTerm(); err != nil {
				return err
			}
			if token.Content == "-" {
				engine.writer.WriteArithmetic(NegCommand)
			} else {
				engine.writer.WriteArithmetic(NotCommand)
			}
		default:
			return engine.makeError("term")
		}
	default:
		return engine.makeError("term")
	}
	return nil
}

// Strings are built at run time: String.new with the length, then one appendChar per
// character. appendChar returns the string, so it stays on the stack for the next call.
func (engine *CompilationEngine) writeStringConstant(str string) {
	chars := []rune(str)
	engine.writer.WritePush(ConstantSegment, len(chars))
	engine.writer.WriteCall("String.new", 1)
	for _, char := range chars {
		engine.writer.WritePush(ConstantSegment, int(char))
		engine.writer.WriteCall("String.appendChar", 2)
	}
}

// true is -1 (all bits set), false and null are 0.
func (engine *CompilationEngine) compileKeywordConstant(token *Token) error {
	switch token.Content {
	case "true":
		engine.writer.WritePush(ConstantSegment, 0)
		engine.writer.WriteArithmetic(NotCommand)
	case "false", "null":
		engine.writer.WritePush(ConstantSegment, 0)
	case "this":
		engine.writer.WritePush(PointerSegment, 0)
	default:
		return engine.makeError("true|false|null|this")
	}
	return nil
}

// A term starting with a name is a variable, an array element or a call, the token after
// the name decides which.
func (engine *CompilationEngine) compileVarNameTerm(nameToken *Token) error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	if token.IsSymbol("(") || token.IsSymbol(".") {
		engine.cursor.Retreat()
		return engine.compileSubroutineCall(nameToken)
	}
	isArray := token.IsSymbol("[")
	if !isArray {
		engine.cursor.Retreat()
	}

	symbol, err := engine.symbolTable.resolve(nameToken.Content)
	if err != nil {
		return err
	}
	engine.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
	if !isArray {
		return nil
	}
	if err = engine.compileExpression(); err != nil {
		return err
	}
	if err = engine.expectSymbol("]"); err != nil {
		return err
	}
	engine.writer.WriteArithmetic(AddCommand)
	engine.writer.WritePop(PointerSegment, 1)
	engine.writer.WritePush(ThatSegment, 0)
	return nil
}

// subroutineName ( expressionList ) | (className | varName) . subroutineName ( expressionList )
//
// The name has already been read. An unqualified call is a method call on `this`. A
// qualified call on a variable is a method call on the object it holds, a qualified call on
// any other name is a function or constructor call on that class.
func (engine *CompilationEngine) compileSubroutineCall(nameToken *Token) error {
	token, err := engine.cursor.Advance()
	if err != nil {
		return err
	}
	var functionName string
	nArgs := 0
	switch {
	case token.IsSymbol("("):
		engine.writer.WritePush(PointerSegment, 0)
		functionName, nArgs = engine.className+"."+nameToken.Content, 1
		engine.cursor.Retreat()
	case token.IsSymbol("."):
		memberToken, err := engine.expectIdentifier("subroutineName")
		if err != nil {
			return err
		}
		functionName = nameToken.Content + "." + memberToken.Content
		if symbol, ok := engine.symbolTable.Lookup(nameToken.Content); ok {
			if primitiveTypes[symbol.Type] {
				return &SyntaxError{Expected: "object or class name", Token: nameToken}
			}
			engine.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
			functionName, nArgs = symbol.Type+"."+memberToken.Content, 1
		}
	default:
		return engine.makeError("'(' or '.'")
	}

	if err = engine.expectSymbol("("); err != nil {
		return err
	}
	count, err := engine.compileExpressionList()
	if err != nil {
		return err
	}
	if err = engine.expectSymbol(")"); err != nil {
		return err
	}
	engine.writer.WriteCall(functionName, nArgs+count)
	return nil
}

// (expression (, expression)*)? returns the number of expressions.
func (engine *CompilationEngine) compileExpressionList() (int, error) {
	token, err := engine.cursor.Advance()
	if err != nil {
		return 0, err
	}
	engine.cursor.Retreat()
	if token.IsSymbol(")") {
		return 0, nil
	}
	count := 0
	for {
		if err = engine.compileExpression(); err != nil {
			return 0, err
		}
		count++
		token, err = engine.cursor.Advance()
		if err != nil {
			return 0, err
		}
		if !token.IsSymbol(",") {
			engine.cursor.Retreat()
			return count, nil
		}
	}
}

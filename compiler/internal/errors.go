package internal

import "fmt"

// Every error below is fatal for the file being compiled. Nothing inside this package
// recovers from them, callers match them with errors.As.

// LexicalError is returned by the tokenizer when some input matches no token class.
type LexicalError struct {
	Line int
	Near string
	Msg  string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("Tokenizer: tokenizer error near %s at line %d, msg: %s", e.Near, e.Line, e.Msg)
}

// SyntaxError is returned when the current token is not what the grammar expects.
// Token is nil when the input ended early.
type SyntaxError struct {
	Expected string
	Token    *Token
}

func (e *SyntaxError) Error() string {
	if e.Token == nil {
		return fmt.Sprintf("syntax error: expected %s, got end of input", e.Expected)
	}
	return fmt.Sprintf("syntax error near %s at line %d: expected %s", e.Token.Content, e.Token.Line, e.Expected)
}

type UnresolvedSymbolError struct {
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("unresolved symbol: %s", e.Name)
}

// TrailingInputError is returned when tokens follow the closing brace of the class.
type TrailingInputError struct {
	Token *Token
}

func (e *TrailingInputError) Error() string {
	return fmt.Sprintf("unexpected token %s at line %d after end of class", e.Token.Content, e.Token.Line)
}

// ExhaustedTokensError is returned when a token is requested past the end of input.
type ExhaustedTokensError struct{}

func (e *ExhaustedTokensError) Error() string {
	return "unexpected token ends"
}

package internal

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/xiaobogaga/jackc/util"
)

// A simple Tokenizer for jack.

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer (decimal), string ("xxx", no escapes, no newline).
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, //. Comments are removed before tokenizing.

type TokenType int

const (
	InvalidTP TokenType = iota
	KeywordTP
	SymbolTP
	IntegerConstantTP
	StringConstantTP
	IdentifierTP
)

// String returns the name used for the token type in the markup output.
func (tp TokenType) String() string {
	switch tp {
	case KeywordTP:
		return "keyword"
	case SymbolTP:
		return "symbol"
	case IntegerConstantTP:
		return "integerConstant"
	case StringConstantTP:
		return "stringConstant"
	case IdentifierTP:
		return "identifier"
	}
	return "invalid"
}

var keyWords = []string{
	"class", "constructor", "function", "method", "field", "static", "var", "int", "char", "boolean", "void",
	"true", "false", "null", "this", "let", "do", "if", "else", "while", "return",
}

// The five token classes in the order they are tried.
var (
	keywordRegex         = regexp.MustCompile(`^(` + strings.Join(keyWords, "|") + `)$`)
	symbolRegex          = regexp.MustCompile(`^[{}()\[\].,;+\-*/&|<>=~]$`)
	integerConstantRegex = regexp.MustCompile(`^[0-9]+$`)
	stringConstantRegex  = regexp.MustCompile("^\"[^\"\n]*\"$")
	identifierRegex      = regexp.MustCompile(`^[A-Za-z_]\w*$`)

	tokenClasses = []struct {
		regex *regexp.Regexp
		tp    TokenType
	}{
		{keywordRegex, KeywordTP},
		{symbolRegex, SymbolTP},
		{integerConstantRegex, IntegerConstantTP},
		{stringConstantRegex, StringConstantTP},
		{identifierRegex, IdentifierTP},
	}
)

// Classify returns the type of a lexeme, or InvalidTP when the lexeme is not a token.
func Classify(lexeme string) TokenType {
	for _, class := range tokenClasses {
		if class.regex.MatchString(lexeme) {
			return class.tp
		}
	}
	return InvalidTP
}

type Token struct {
	Type    TokenType
	Content string // the lexeme as written, string constants keep their quotes.
	Line    int
}

func (t *Token) Is(tp TokenType, content string) bool {
	return t != nil && t.Type == tp && t.Content == content
}

func (t *Token) IsSymbol(symbol string) bool {
	return t.Is(SymbolTP, symbol)
}

func (t *Token) IsKeyword(keyword string) bool {
	return t.Is(KeywordTP, keyword)
}

// StringVal returns the content of a string constant without quotes.
func (t *Token) StringVal() string {
	return strings.TrimSuffix(strings.TrimPrefix(t.Content, `"`), `"`)
}

func (t *Token) IntVal() (int, error) {
	return strconv.Atoi(t.Content)
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token
}

// Tokenize accepts a source `rd` and tokenizes its content according to jack language rules.
func Tokenize(rd io.Reader) ([]*Token, error) {
	tokenizer := &Tokenizer{}
	return tokenizer.Tokenize(rd)
}

// Tokenize is the main method of this tokenizer.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	src := stripComments(content)
	tokenizer.currentPos, tokenizer.currentLine = 0, 1
	for tokenizer.currentPos < len(src) {
		err = tokenizer.getNextToken(src)
		if err != nil {
			return nil, err
		}
	}
	return tokenizer.tokens, nil
}

// getNextToken consumes whitespace or exactly one token starting at currentPos.
func (tokenizer *Tokenizer) getNextToken(src []byte) error {
	b := src[tokenizer.currentPos]
	switch {
	case b == '\n':
		tokenizer.currentLine++
		tokenizer.currentPos++
		return nil
	case util.IsSpace(b):
		tokenizer.currentPos++
		return nil
	case util.IsSymbol(b):
		return tokenizer.tokenRun(src, 1)
	case util.IsNumber(b):
		return tokenizer.tokenRun(src, tokenizer.runLength(src, util.IsNumber))
	case b == '"':
		return tokenizer.tokenString(src)
	case util.IsLetterOrUnderscore(b):
		return tokenizer.tokenRun(src, tokenizer.runLength(src, util.IsLetterOrUnderscoreOrNumber))
	}
	return tokenizer.makeError(src, "unknown character")
}

// runLength returns the length of the longest run of bytes accepted by `accept` at currentPos.
func (tokenizer *Tokenizer) runLength(src []byte, accept func(byte) bool) int {
	end := tokenizer.currentPos
	for end < len(src) && accept(src[end]) {
		end++
	}
	return end - tokenizer.currentPos
}

func (tokenizer *Tokenizer) tokenString(src []byte) error {
	// Looking forward through the line to find a closing quote. Characters are pushed as
	// their codes, only ascii fits the vm's character set.
	for end := tokenizer.currentPos + 1; end < len(src) && src[end] != '\n'; end++ {
		if src[end] > unicode.MaxASCII {
			return tokenizer.makeError(src, "non-ascii character in string")
		}
		if src[end] == '"' {
			return tokenizer.tokenRun(src, end+1-tokenizer.currentPos)
		}
	}
	return tokenizer.makeError(src, "incorrect string format")
}

// tokenRun materializes the next `length` bytes as one token. Its type is decided by
// re-testing the lexeme against the token classes, so a word is a keyword only when the
// whole word is reserved.
func (tokenizer *Tokenizer) tokenRun(src []byte, length int) error {
	lexeme := string(src[tokenizer.currentPos : tokenizer.currentPos+length])
	tp := Classify(lexeme)
	if tp == InvalidTP {
		return tokenizer.makeError(src, "unknown token")
	}
	tokenizer.tokens = append(tokenizer.tokens, &Token{Type: tp, Content: lexeme, Line: tokenizer.currentLine})
	tokenizer.currentPos += length
	return nil
}

func (tokenizer *Tokenizer) makeError(src []byte, msg string) error {
	end := tokenizer.currentPos
	for end < len(src) && src[end] != '\n' && !util.IsSpace(src[end]) {
		end++
	}
	if end == tokenizer.currentPos {
		end++
	}
	return &LexicalError{Line: tokenizer.currentLine, Near: string(src[tokenizer.currentPos:end]), Msg: msg}
}

// stripComments removes // and /* */ comments. Newlines are kept so that tokens still know
// their line, a block comment without newlines becomes a single space. A block comment
// that is never closed drops the rest of the source, starting at its opening delimiter.
// Comment delimiters inside a string constant are part of the string.
func stripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	inString := false
	for i := 0; i < len(src); i++ {
		b := src[i]
		if inString {
			out = append(out, b)
			if b == '"' || b == '\n' {
				inString = false
			}
			continue
		}
		switch {
		case b == '"':
			inString = true
			out = append(out, b)
		case b == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
		case b == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			comment := src[i : i+2+end+2]
			newLines := bytes.Count(comment, []byte("\n"))
			if newLines == 0 {
				out = append(out, ' ')
			}
			out = append(out, bytes.Repeat([]byte("\n"), newLines)...)
			i += len(comment) - 1
		default:
			out = append(out, b)
		}
	}
	return out
}

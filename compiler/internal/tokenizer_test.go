package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenContents(tokens []*Token) []string {
	var contents []string
	for _, token := range tokens {
		contents = append(contents, token.Content)
	}
	return contents
}

func TestTokenizer_Classify(t *testing.T) {
	testData := []struct {
		lexeme string
		tp     TokenType
	}{
		{lexeme: "class", tp: KeywordTP},
		{lexeme: "return", tp: KeywordTP},
		{lexeme: "classic", tp: IdentifierTP},
		{lexeme: "whileLoop", tp: IdentifierTP},
		{lexeme: "_tmp1", tp: IdentifierTP},
		{lexeme: "{", tp: SymbolTP},
		{lexeme: "~", tp: SymbolTP},
		{lexeme: "123", tp: IntegerConstantTP},
		{lexeme: `"hi there"`, tp: StringConstantTP},
		{lexeme: "1abc", tp: InvalidTP},
		{lexeme: "#", tp: InvalidTP},
	}
	for _, data := range testData {
		assert.Equal(t, data.tp, Classify(data.lexeme), data.lexeme)
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	testData := []struct {
		content  string
		expected []string
		types    []TokenType
	}{
		{
			content:  "let x = 5;",
			expected: []string{"let", "x", "=", "5", ";"},
			types:    []TokenType{KeywordTP, IdentifierTP, SymbolTP, IntegerConstantTP, SymbolTP},
		},
		{
			content:  `do Output.printString("a // b");`,
			expected: []string{"do", "Output", ".", "printString", "(", `"a // b"`, ")", ";"},
			types: []TokenType{KeywordTP, IdentifierTP, SymbolTP, IdentifierTP, SymbolTP, StringConstantTP,
				SymbolTP, SymbolTP},
		},
		{
			content:  "if(x<y){return;}",
			expected: []string{"if", "(", "x", "<", "y", ")", "{", "return", ";", "}"},
			types: []TokenType{KeywordTP, SymbolTP, IdentifierTP, SymbolTP, IdentifierTP, SymbolTP, SymbolTP,
				KeywordTP, SymbolTP, SymbolTP},
		},
		{
			content:  "classic whileLoop",
			expected: []string{"classic", "whileLoop"},
			types:    []TokenType{IdentifierTP, IdentifierTP},
		},
		{
			content:  "a[i]=-b;",
			expected: []string{"a", "[", "i", "]", "=", "-", "b", ";"},
			types: []TokenType{IdentifierTP, SymbolTP, IdentifierTP, SymbolTP, SymbolTP, SymbolTP, IdentifierTP,
				SymbolTP},
		},
	}
	for _, data := range testData {
		tokens, err := Tokenize(strings.NewReader(data.content))
		assert.Nil(t, err, data.content)
		assert.Equal(t, data.expected, tokenContents(tokens), data.content)
		for i, token := range tokens {
			assert.Equal(t, data.types[i], token.Type, token.Content)
		}
	}
}

func TestTokenizer_Comments(t *testing.T) {
	testData := []struct {
		content  string
		expected []string
	}{
		{content: "// only a comment", expected: nil},
		{content: "let x = 1; // trailing\nreturn;", expected: []string{"let", "x", "=", "1", ";", "return", ";"}},
		{content: "a/* inline */b", expected: []string{"a", "b"}},
		{content: "/** doc\n * more\n */ class", expected: []string{"class"}},
		{content: "x /* never closed\nreturn;", expected: []string{"x"}},
		{content: `"/* not a comment */" y`, expected: []string{`"/* not a comment */"`, "y"}},
		{content: "a / b", expected: []string{"a", "/", "b"}},
	}
	for _, data := range testData {
		tokens, err := Tokenize(strings.NewReader(data.content))
		assert.Nil(t, err, data.content)
		assert.Equal(t, data.expected, tokenContents(tokens), data.content)
	}
}

func TestTokenizer_LineNumbers(t *testing.T) {
	content := "class A {\n/* one\ntwo */ field int x;\n// c\n}"
	tokens, err := Tokenize(strings.NewReader(content))
	require.Nil(t, err)
	lines := map[string]int{}
	for _, token := range tokens {
		lines[token.Content] = token.Line
	}
	assert.Equal(t, 1, lines["class"])
	assert.Equal(t, 3, lines["field"])
	assert.Equal(t, 5, lines["}"])
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []struct {
		content string
		line    int
	}{
		{content: "let x = #;", line: 1},
		{content: "let x = 1;\nlet y = 1 $;", line: 2},
		{content: "\n\ndo f(\"unterminated);", line: 3},
		{content: "let s = \"two\nlines\";", line: 1},
		{content: "let s = 1;\ndo Output.printString(\"caf\u00e9\");", line: 2},
		{content: "do Output.printString(\"\U0001F600\");", line: 1},
		{content: "do Output.printString(\"\xff\");", line: 1},
	}
	for _, data := range testData {
		tokens, err := Tokenize(strings.NewReader(data.content))
		assert.Nil(t, tokens)
		var lexicalErr *LexicalError
		if assert.True(t, errors.As(err, &lexicalErr), data.content) {
			assert.Equal(t, data.line, lexicalErr.Line, data.content)
		}
	}
}

func TestTokenizer_StringAndIntValue(t *testing.T) {
	tokens, err := Tokenize(strings.NewReader(`"hello world" 32767`))
	require.Nil(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "hello world", tokens[0].StringVal())
	value, err := tokens[1].IntVal()
	assert.Nil(t, err)
	assert.Equal(t, 32767, value)
}

// Writing the tokens back separated by spaces and tokenizing again gives the same tokens.
func TestTokenizer_Idempotence(t *testing.T) {
	content := `
	class Main {
		/** entry */
		function void main() {
			var Array a; // local
			let a = Array.new(3);
			let a[0] = "x y" ;
			if (~(a[0] = null)) { do Output.printInt(-1 * 2); }
			return;
		}
	}`
	first, err := Tokenize(strings.NewReader(content))
	require.Nil(t, err)
	second, err := Tokenize(bytes.NewReader([]byte(strings.Join(tokenContents(first), " "))))
	require.Nil(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

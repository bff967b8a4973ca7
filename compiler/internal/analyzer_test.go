package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Analyze(t *testing.T) {
	src := "class A { field int x; method void f() { let x = x < 1; return; } }"
	expected := `<class>
  <keyword> class </keyword>
  <identifier> A </identifier>
  <symbol> { </symbol>
  <classVarDec>
    <keyword> field </keyword>
    <keyword> int </keyword>
    <identifier> x </identifier>
    <symbol> ; </symbol>
  </classVarDec>
  <subroutineDec>
    <keyword> method </keyword>
    <keyword> void </keyword>
    <identifier> f </identifier>
    <symbol> ( </symbol>
    <parameterList>
    </parameterList>
    <symbol> ) </symbol>
    <subroutineBody>
      <symbol> { </symbol>
      <statements>
        <letStatement>
          <keyword> let </keyword>
          <identifier> x </identifier>
          <symbol> = </symbol>
          <expression>
            <term>
              <identifier> x </identifier>
            </term>
            <symbol> &lt; </symbol>
            <term>
              <integerConstant> 1 </integerConstant>
            </term>
          </expression>
          <symbol> ; </symbol>
        </letStatement>
        <returnStatement>
          <keyword> return </keyword>
          <symbol> ; </symbol>
        </returnStatement>
      </statements>
      <symbol> } </symbol>
    </subroutineBody>
  </subroutineDec>
  <symbol> } </symbol>
</class>
`
	buf := &bytes.Buffer{}
	assert.Nil(t, Analyze(strings.NewReader(src), buf))
	assert.Equal(t, expected, buf.String())
}

func TestAnalyzer_AllStatements(t *testing.T) {
	src := `
	class Main {
		static boolean flag;
		function void main(int n, Array a) {
			var int i, j;
			let a[i] = -a[j + 1];
			if (~flag) { do Output.printString("a&b"); } else { do run(i, (j)); }
			while (i > n) { let i = null; }
			return this;
		}
	}`
	buf := &bytes.Buffer{}
	require.Nil(t, Analyze(strings.NewReader(src), buf))
	out := buf.String()
	for _, tag := range []string{"class", "classVarDec", "subroutineDec", "parameterList", "subroutineBody",
		"varDec", "statements", "letStatement", "ifStatement", "whileStatement", "doStatement",
		"returnStatement", "expression", "term", "expressionList"} {
		assert.Equal(t, strings.Count(out, "<"+tag+">"), strings.Count(out, "</"+tag+">"), tag)
		assert.Contains(t, out, "<"+tag+">", tag)
	}
	assert.Contains(t, out, "<stringConstant> a&amp;b </stringConstant>")
	assert.Contains(t, out, "<symbol> &gt; </symbol>")
	assert.Contains(t, out, "<keyword> else </keyword>")
	// Names are not resolved in markup mode.
	assert.Contains(t, out, "<identifier> run </identifier>")
}

func TestAnalyzer_Errors(t *testing.T) {
	testData := []struct {
		src string
	}{
		{src: "class A { function void f() { let x 5; } }"},
		{src: "class A { function void f() { do x; } }"},
		{src: "class A { function void f(int) { } }"},
		{src: "class A { function void f(int a; int b) { } }"},
		{src: "class A { function void f(int a,) { } }"},
		{src: "class A { function void f() { return } }"},
	}
	for _, data := range testData {
		buf := &bytes.Buffer{}
		err := Analyze(strings.NewReader(data.src), buf)
		var syntaxErr *SyntaxError
		assert.True(t, errors.As(err, &syntaxErr), "%s: %v", data.src, err)
		assert.Equal(t, 0, buf.Len())
	}

	buf := &bytes.Buffer{}
	err := Analyze(strings.NewReader("class A { } }"), buf)
	var trailingErr *TrailingInputError
	assert.True(t, errors.As(err, &trailingErr))
	assert.Equal(t, 0, buf.Len())
}

func TestAnalyzer_ParameterList(t *testing.T) {
	buf := &bytes.Buffer{}
	require.Nil(t, Analyze(strings.NewReader("class A { function void f(int a, char b) { return; } }"), buf))
	expected := `    <parameterList>
      <keyword> int </keyword>
      <identifier> a </identifier>
      <symbol> , </symbol>
      <keyword> char </keyword>
      <identifier> b </identifier>
    </parameterList>
    <symbol> ) </symbol>
`
	assert.Contains(t, buf.String(), expected)
}

func TestAnalyzer_WriteTokens(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.Nil(t, WriteTokens(strings.NewReader(`if (x < "a&b") // done`), buf))
	expected := `<tokens>
<keyword> if </keyword>
<symbol> ( </symbol>
<identifier> x </identifier>
<symbol> &lt; </symbol>
<stringConstant> a&amp;b </stringConstant>
<symbol> ) </symbol>
</tokens>
`
	assert.Equal(t, expected, buf.String())
}

package vmcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Parse(t *testing.T) {
	src := `// compiled from Main.jack
function Main.main 2
push constant 7
pop local 1   // store
PUSH THAT 0
add

label WHILE_TOP_0
if-goto WHILE_END_1
goto WHILE_TOP_0
call Math.multiply 2
return`
	cmds, err := Parse(strings.NewReader(src))
	require.Nil(t, err)
	expected := []*Command{
		{Type: FunctionCommand, Name: "Main.main", Count: 2, Line: 2},
		{Type: PushCommand, Segment: "constant", Index: 7, Line: 3},
		{Type: PopCommand, Segment: "local", Index: 1, Line: 4},
		{Type: PushCommand, Segment: "that", Index: 0, Line: 5},
		{Type: ArithmeticCommand, Name: "add", Line: 6},
		{Type: LabelCommand, Name: "WHILE_TOP_0", Line: 8},
		{Type: IfGotoCommand, Name: "WHILE_END_1", Line: 9},
		{Type: GotoCommand, Name: "WHILE_TOP_0", Line: 10},
		{Type: CallCommand, Name: "Math.multiply", Count: 2, Line: 11},
		{Type: ReturnCommand, Line: 12},
	}
	assert.Equal(t, expected, cmds)
}

func TestReader_ArithmeticCommands(t *testing.T) {
	lines := []string{"add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not"}
	cmds, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.Nil(t, err)
	require.Len(t, cmds, len(lines))
	for i, cmd := range cmds {
		assert.Equal(t, ArithmeticCommand, cmd.Type)
		assert.Equal(t, lines[i], cmd.Name)
	}
}

func TestReader_Errors(t *testing.T) {
	lines := []string{
		"jump 3",
		"push heap 1",
		"pop constant 1",
		"push constant 32768",
		"push constant 128512",
		"push pointer 2",
		"pop temp 8",
		"push local -1",
		"push local x",
		"push local",
		"label 1abc",
		"call Foo.bar",
		"return 1",
		"add add",
	}
	for _, l := range lines {
		_, err := Parse(strings.NewReader(l))
		assert.NotNil(t, err, l)
	}
}

func TestReader_LargestConstant(t *testing.T) {
	cmds, err := Parse(strings.NewReader("push constant 32767"))
	require.Nil(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, 32767, cmds[0].Index)
}

func TestReader_ErrorLine(t *testing.T) {
	_, err := Parse(strings.NewReader("push constant 1\n\npop constant 1\n"))
	assert.EqualError(t, err, "SyntaxError: syntax error near constant at line 3")
}

func TestLabels(t *testing.T) {
	cmds, err := Parse(strings.NewReader("label A\ngoto A\nif-goto A\nlabel B\nif-goto C\n"))
	require.Nil(t, err)
	labels := Labels(cmds)
	assert.Equal(t, &LabelUse{Defined: 1, Targeted: 2}, labels["A"])
	assert.Equal(t, &LabelUse{Defined: 1}, labels["B"])
	assert.Equal(t, &LabelUse{Targeted: 1}, labels["C"])
	assert.EqualError(t, CheckLabels(cmds), "label C targeted but never defined")

	cmds, err = Parse(strings.NewReader("label A\nlabel A\n"))
	require.Nil(t, err)
	assert.EqualError(t, CheckLabels(cmds), "label A defined 2 times")
}

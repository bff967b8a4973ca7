package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVMWriter_Write(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := NewVMWriter(buf)
	writer.WriteFunction("Main.main", 2)
	writer.WritePush(ConstantSegment, 7)
	writer.WritePop(LocalSegment, 1)
	writer.WriteArithmetic(AddCommand)
	writer.WriteLabel("WHILE_TOP_0")
	writer.WriteIf("WHILE_END_1")
	writer.WriteGoto("WHILE_TOP_0")
	writer.WriteCall("Math.multiply", 2)
	writer.WriteReturn()
	// Buffered until Close.
	assert.Equal(t, 0, buf.Len())
	assert.Nil(t, writer.Close())
	expected := `function Main.main 2
push constant 7
pop local 1
add
label WHILE_TOP_0
if-goto WHILE_END_1
goto WHILE_TOP_0
call Math.multiply 2
return
`
	assert.Equal(t, expected, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestVMWriter_CloseError(t *testing.T) {
	writer := NewVMWriter(failingWriter{})
	writer.WriteReturn()
	assert.EqualError(t, writer.Close(), "disk full")
}

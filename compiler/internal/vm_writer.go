package internal

import (
	"bufio"
	"fmt"
	"io"
)

type Segment string

const (
	InvalidSegment  Segment = ""
	ConstantSegment Segment = "constant"
	ArgumentSegment Segment = "argument"
	LocalSegment    Segment = "local"
	StaticSegment   Segment = "static"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
)

// Command is an arithmetic or logical vm command.
type Command string

const (
	AddCommand Command = "add"
	SubCommand Command = "sub"
	NegCommand Command = "neg"
	EqCommand  Command = "eq"
	GtCommand  Command = "gt"
	LtCommand  Command = "lt"
	AndCommand Command = "and"
	OrCommand  Command = "or"
	NotCommand Command = "not"
)

// VMWriter appends vm commands to an output, one command per line. The first write error is
// kept, later writes are dropped and Close reports it.
type VMWriter struct {
	output *bufio.Writer
	err    error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: bufio.NewWriter(w)}
}

func (writer *VMWriter) writeCommand(format string, args ...interface{}) {
	if writer.err != nil {
		return
	}
	_, writer.err = fmt.Fprintf(writer.output, format+"\n", args...)
}

func (writer *VMWriter) WritePush(segment Segment, index int) {
	writer.writeCommand("push %s %d", segment, index)
}

func (writer *VMWriter) WritePop(segment Segment, index int) {
	writer.writeCommand("pop %s %d", segment, index)
}

func (writer *VMWriter) WriteArithmetic(command Command) {
	writer.writeCommand("%s", command)
}

func (writer *VMWriter) WriteLabel(label string) {
	writer.writeCommand("label %s", label)
}

func (writer *VMWriter) WriteGoto(label string) {
	writer.writeCommand("goto %s", label)
}

func (writer *VMWriter) WriteIf(label string) {
	writer.writeCommand("if-goto %s", label)
}

func (writer *VMWriter) WriteCall(name string, nArgs int) {
	writer.writeCommand("call %s %d", name, nArgs)
}

func (writer *VMWriter) WriteFunction(name string, nLocals int) {
	writer.writeCommand("function %s %d", name, nLocals)
}

func (writer *VMWriter) WriteReturn() {
	writer.writeCommand("return")
}

// Close flushes buffered commands to the output.
func (writer *VMWriter) Close() error {
	if writer.err != nil {
		return writer.err
	}
	return writer.output.Flush()
}

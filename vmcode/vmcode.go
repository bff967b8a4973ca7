package vmcode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A reader for vm code, the language the jack compiler writes.

// There are four kinds of vm commands, they are:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index, where segment can be
//   argument, local, static, constant, this, that, pointer, temp.
// * Program flow commands: label name, if-goto name, goto name.
// * Function calling commands: function f k, call f n, return.
// Anything after `//` is a comment.

type KeyWordTP int

const (
	PushKeyWordTP KeyWordTP = iota
	PopKeyWordTP
	ArgumentKeyWordTP
	LocalKeyWordTP
	StaticKeyWordTP
	ConstantKeyWordTP
	ThisKeyWordTP
	ThatKeyWordTP
	PointerKeyWordTP
	TempKeyWordTP
	AddKeyWordTP
	SubKeyWordTP
	NegKeyWordTP
	EqKeyWordTP
	GtKeyWordTP
	LtKeyWordTP
	AndKeyWordTP
	OrKeyWordTP
	NotKeyWordTP
	LabelKeyWordTP
	IfGotoKeyWordTP
	GotoKeyWordTP
	FunctionKeyWordTP
	CallKeyWordTP
	ReturnKeyWordTP
)

var keyWordsMap = map[string]KeyWordTP{
	"PUSH":     PushKeyWordTP,
	"POP":      PopKeyWordTP,
	"ARGUMENT": ArgumentKeyWordTP,
	"LOCAL":    LocalKeyWordTP,
	"STATIC":   StaticKeyWordTP,
	"CONSTANT": ConstantKeyWordTP,
	"THIS":     ThisKeyWordTP,
	"THAT":     ThatKeyWordTP,
	"POINTER":  PointerKeyWordTP,
	"TEMP":     TempKeyWordTP,
	"ADD":      AddKeyWordTP,
	"SUB":      SubKeyWordTP,
	"NEG":      NegKeyWordTP,
	"EQ":       EqKeyWordTP,
	"GT":       GtKeyWordTP,
	"LT":       LtKeyWordTP,
	"AND":      AndKeyWordTP,
	"OR":       OrKeyWordTP,
	"NOT":      NotKeyWordTP,
	"LABEL":    LabelKeyWordTP,
	"IF-GOTO":  IfGotoKeyWordTP,
	"GOTO":     GotoKeyWordTP,
	"FUNCTION": FunctionKeyWordTP,
	"CALL":     CallKeyWordTP,
	"RETURN":   ReturnKeyWordTP,
}

var segmentKeyWords = map[KeyWordTP]string{
	ArgumentKeyWordTP: "argument",
	LocalKeyWordTP:    "local",
	StaticKeyWordTP:   "static",
	ConstantKeyWordTP: "constant",
	ThisKeyWordTP:     "this",
	ThatKeyWordTP:     "that",
	PointerKeyWordTP:  "pointer",
	TempKeyWordTP:     "temp",
}

var arithmeticKeyWords = map[KeyWordTP]string{
	AddKeyWordTP: "add",
	SubKeyWordTP: "sub",
	NegKeyWordTP: "neg",
	EqKeyWordTP:  "eq",
	GtKeyWordTP:  "gt",
	LtKeyWordTP:  "lt",
	AndKeyWordTP: "and",
	OrKeyWordTP:  "or",
	NotKeyWordTP: "not",
}

// The largest constant a push can load, words are 16 bit two's complement.
const maxConstant = 32767

var labelFormat = regexp.MustCompile(`^[A-Za-z_.:][0-9A-Za-z_.$:]*$`)

type CommandType int

const (
	ArithmeticCommand CommandType = iota
	PushCommand
	PopCommand
	LabelCommand
	GotoCommand
	IfGotoCommand
	FunctionCommand
	CallCommand
	ReturnCommand
)

// Command is one parsed vm command. Name holds the arithmetic operator, the label or the
// function name, Count the number of locals of a function or arguments of a call.
type Command struct {
	Type    CommandType
	Name    string
	Segment string
	Index   int
	Count   int
	Line    int
}

type Reader struct {
	lineCounter int
	commands    []*Command
}

// Parse reads vm commands from `rd`, one per line.
func Parse(rd io.Reader) ([]*Command, error) {
	reader := &Reader{}
	return reader.Parse(rd)
}

func (reader *Reader) Parse(rd io.Reader) ([]*Command, error) {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		reader.lineCounter++
		command, err := reader.parseLine(scanner.Bytes())
		if err != nil {
			return nil, err
		}
		if command != nil {
			command.Line = reader.lineCounter
			reader.commands = append(reader.commands, command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reader.commands, nil
}

// getNextToken returns the next whitespace separated word and the rest of the line.
func (reader *Reader) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

// parseLine returns nil for blank and comment lines.
func (reader *Reader) parseLine(line []byte) (*Command, error) {
	token, line := reader.getNextToken(line)
	if len(token) == 0 {
		return nil, nil
	}
	if strings.HasPrefix(token, "//") {
		return nil, nil
	}
	keyWordTP, exist := keyWordsMap[strings.ToUpper(token)]
	if !exist {
		return nil, reader.makeError(token)
	}
	var command *Command
	var err error
	switch keyWordTP {
	case PushKeyWordTP:
		command, line, err = reader.parseMemoryAccess(PushCommand, line)
	case PopKeyWordTP:
		command, line, err = reader.parseMemoryAccess(PopCommand, line)
	case LabelKeyWordTP:
		command, line, err = reader.parseFlow(LabelCommand, line)
	case GotoKeyWordTP:
		command, line, err = reader.parseFlow(GotoCommand, line)
	case IfGotoKeyWordTP:
		command, line, err = reader.parseFlow(IfGotoCommand, line)
	case FunctionKeyWordTP:
		command, line, err = reader.parseFunctionOrCall(FunctionCommand, line)
	case CallKeyWordTP:
		command, line, err = reader.parseFunctionOrCall(CallCommand, line)
	case ReturnKeyWordTP:
		command = &Command{Type: ReturnCommand}
	default:
		op, ok := arithmeticKeyWords[keyWordTP]
		if !ok {
			return nil, reader.makeError(token)
		}
		command = &Command{Type: ArithmeticCommand, Name: op}
	}
	if err != nil {
		return nil, err
	}
	return command, reader.parseRemainContent(line)
}

// push|pop segment index. constant can not be popped and is at most maxConstant, pointer has
// two cells and temp eight.
func (reader *Reader) parseMemoryAccess(tp CommandType, line []byte) (*Command, []byte, error) {
	token, line := reader.getNextToken(line)
	keyWordTP, exist := keyWordsMap[strings.ToUpper(token)]
	segment, isSegment := segmentKeyWords[keyWordTP]
	if !exist || !isSegment {
		return nil, nil, reader.makeError(token)
	}
	if tp == PopCommand && keyWordTP == ConstantKeyWordTP {
		return nil, nil, reader.makeError(token)
	}
	index, line, err := reader.getIntegerValue(line)
	if err != nil {
		return nil, nil, err
	}
	if (keyWordTP == PointerKeyWordTP && index > 1) || (keyWordTP == TempKeyWordTP && index > 7) ||
		(keyWordTP == ConstantKeyWordTP && index > maxConstant) {
		return nil, nil, reader.makeError(strconv.Itoa(index))
	}
	return &Command{Type: tp, Segment: segment, Index: index}, line, nil
}

func (reader *Reader) parseFlow(tp CommandType, line []byte) (*Command, []byte, error) {
	line, label, err := reader.parseLabelName(line)
	if err != nil {
		return nil, nil, err
	}
	return &Command{Type: tp, Name: label}, line, nil
}

func (reader *Reader) parseFunctionOrCall(tp CommandType, line []byte) (*Command, []byte, error) {
	line, name, err := reader.parseLabelName(line)
	if err != nil {
		return nil, nil, err
	}
	count, line, err := reader.getIntegerValue(line)
	if err != nil {
		return nil, nil, err
	}
	return &Command{Type: tp, Name: name, Count: count}, line, nil
}

func (reader *Reader) parseLabelName(line []byte) ([]byte, string, error) {
	token, line := reader.getNextToken(line)
	if len(token) == 0 || !labelFormat.MatchString(token) {
		return nil, "", reader.makeError(token)
	}
	return line, token, nil
}

func (reader *Reader) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := reader.getNextToken(line)
	if len(token) == 0 {
		return -1, nil, reader.makeError(token)
	}
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, reader.makeError(token)
	}
	return ret, line, nil
}

func (reader *Reader) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 {
		return nil
	}
	// Ignore comment
	if bytes.HasPrefix(remain, []byte("//")) {
		return nil
	}
	return reader.makeError(string(remain))
}

func (reader *Reader) makeError(near string) error {
	return fmt.Errorf("SyntaxError: syntax error near %s at line %d", near, reader.lineCounter)
}

// LabelUse counts how often a label is defined and how often a goto or if-goto targets it.
type LabelUse struct {
	Defined  int
	Targeted int
}

// Labels summarizes the labels of `cmds` by name.
func Labels(cmds []*Command) map[string]*LabelUse {
	labels := map[string]*LabelUse{}
	use := func(name string) *LabelUse {
		if labels[name] == nil {
			labels[name] = &LabelUse{}
		}
		return labels[name]
	}
	for _, cmd := range cmds {
		switch cmd.Type {
		case LabelCommand:
			use(cmd.Name).Defined++
		case GotoCommand, IfGotoCommand:
			use(cmd.Name).Targeted++
		}
	}
	return labels
}

// CheckLabels reports labels defined more than once and targets that are never defined.
func CheckLabels(cmds []*Command) error {
	labels := Labels(cmds)
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		use := labels[name]
		if use.Defined > 1 {
			return fmt.Errorf("label %s defined %d times", name, use.Defined)
		}
		if use.Targeted > 0 && use.Defined == 0 {
			return fmt.Errorf("label %s targeted but never defined", name)
		}
	}
	return nil
}

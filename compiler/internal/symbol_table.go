package internal

// Kind is the storage category of a declared name.
type Kind int

const (
	NoneKind Kind = iota
	StaticKind
	FieldKind
	ArgumentKind
	LocalKind
)

func (kind Kind) String() string {
	switch kind {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return "none"
}

// Segment returns the vm segment variables of this kind live in.
func (kind Kind) Segment() Segment {
	switch kind {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgumentKind:
		return ArgumentSegment
	case LocalKind:
		return LocalSegment
	}
	return InvalidSegment
}

type Symbol struct {
	Name  string
	Type  string // int, char, boolean or a class name.
	Kind  Kind
	Index int
}

// SymbolTable has two scopes. The class scope holds static and field variables and lives as
// long as the class, the subroutine scope holds arguments and locals and is cleared by
// StartSubroutine. Lookups try the subroutine scope first.
type SymbolTable struct {
	classScope      map[string]*Symbol
	subroutineScope map[string]*Symbol
	counters        map[Kind]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScope:      map[string]*Symbol{},
		subroutineScope: map[string]*Symbol{},
		counters:        map[Kind]int{},
	}
}

// Reset clears both scopes, used when a new class starts.
func (table *SymbolTable) Reset() {
	table.classScope = map[string]*Symbol{}
	table.subroutineScope = map[string]*Symbol{}
	table.counters = map[Kind]int{}
}

func (table *SymbolTable) StartSubroutine() {
	table.subroutineScope = map[string]*Symbol{}
	table.counters[ArgumentKind] = 0
	table.counters[LocalKind] = 0
}

// Define adds name to the scope of its kind with the next free index of that kind.
// Defining a name twice in one scope replaces the earlier entry.
func (table *SymbolTable) Define(name, tp string, kind Kind) *Symbol {
	symbol := &Symbol{Name: name, Type: tp, Kind: kind, Index: table.counters[kind]}
	table.counters[kind]++
	switch kind {
	case StaticKind, FieldKind:
		table.classScope[name] = symbol
	default:
		table.subroutineScope[name] = symbol
	}
	return symbol
}

func (table *SymbolTable) VarCount(kind Kind) int {
	return table.counters[kind]
}

// Lookup resolves name, subroutine scope first.
func (table *SymbolTable) Lookup(name string) (*Symbol, bool) {
	if symbol, ok := table.subroutineScope[name]; ok {
		return symbol, true
	}
	symbol, ok := table.classScope[name]
	return symbol, ok
}

func (table *SymbolTable) resolve(name string) (*Symbol, error) {
	symbol, ok := table.Lookup(name)
	if !ok {
		return nil, &UnresolvedSymbolError{Name: name}
	}
	return symbol, nil
}

func (table *SymbolTable) KindOf(name string) (Kind, error) {
	symbol, err := table.resolve(name)
	if err != nil {
		return NoneKind, err
	}
	return symbol.Kind, nil
}

func (table *SymbolTable) TypeOf(name string) (string, error) {
	symbol, err := table.resolve(name)
	if err != nil {
		return "", err
	}
	return symbol.Type, nil
}

func (table *SymbolTable) IndexOf(name string) (int, error) {
	symbol, err := table.resolve(name)
	if err != nil {
		return 0, err
	}
	return symbol.Index, nil
}

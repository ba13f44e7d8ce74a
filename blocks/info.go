// Package blocks is the registration surface extensions use to describe
// their blocks and menus, and the dispatcher that invokes them.
package blocks

import "github.com/milk9111/stagekit/vm"

type BlockType string

const (
	Command  BlockType = "command"
	Reporter BlockType = "reporter"
	Label    BlockType = "label"
)

type ArgumentType string

const (
	String  ArgumentType = "string"
	Number  ArgumentType = "number"
	Costume ArgumentType = "costume"
	Boolean ArgumentType = "Boolean"
)

type TargetType string

const (
	Sprite TargetType = "sprite"
	Stage  TargetType = "stage"
)

// Handler runs a block for target. On failure it returns the neutral value
// the block should report alongside the error; the error is logged and never
// stops the caller.
type Handler func(args Args, target *vm.Target) (any, error)

type Argument struct {
	Type    ArgumentType
	Menu    string
	Default string
}

type Block struct {
	Opcode    string
	Type      BlockType
	Text      string
	Arguments map[string]Argument
	// Filter limits the block to the listed target types; empty allows all.
	Filter []TargetType
	// NeedsTarget rejects calls without a target. Filtered blocks always
	// need one.
	NeedsTarget bool
	Handler     Handler
}

type MenuItem struct {
	Text  string
	Value string
}

// Menu is either a static item list or a dynamic query run every time the
// menu is opened.
type Menu struct {
	AcceptReporters bool
	Items           []MenuItem
	Dynamic         func() []MenuItem
}

type Info struct {
	ID     string
	Name   string
	Color1 string
	Color2 string
	Color3 string
	Blocks []Block
	Menus  map[string]Menu
}

// Extension is implemented by every block provider.
type Extension interface {
	Info() Info
}

// Items builds menu items whose text equals their value.
func Items(values ...string) []MenuItem {
	out := make([]MenuItem, 0, len(values))
	for _, v := range values {
		out = append(out, MenuItem{Text: v, Value: v})
	}
	return out
}

// Values returns the values of items.
func Values(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Value)
	}
	return out
}

func (b Block) allows(t *vm.Target) bool {
	if t == nil {
		return len(b.Filter) == 0 && !b.NeedsTarget
	}
	if len(b.Filter) == 0 {
		return true
	}
	want := Sprite
	if t.IsStage() {
		want = Stage
	}
	for _, f := range b.Filter {
		if f == want {
			return true
		}
	}
	return false
}

package blocks

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/vm"
)

type fakeExtension Info

func (f fakeExtension) Info() Info { return Info(f) }

func echo(args Args, _ *vm.Target) (any, error) {
	return args.String("TEXT"), nil
}

func newTestRegistry(t *testing.T, infos ...Info) *Registry {
	t.Helper()
	r := NewRegistry(log.New(io.Discard))
	for _, info := range infos {
		if err := r.Register(fakeExtension(info)); err != nil {
			t.Fatalf("Register %s: %v", info.ID, err)
		}
	}
	return r
}

func TestRegisterValidates(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "empty_id",
			info: Info{Name: "nameless"},
			want: "empty extension id",
		},
		{
			name: "missing_handler",
			info: Info{ID: "x", Blocks: []Block{{Opcode: "go", Type: Command}}},
			want: "no opcode or handler",
		},
		{
			name: "duplicate_opcode",
			info: Info{ID: "x", Blocks: []Block{
				{Opcode: "go", Type: Command, Handler: echo},
				{Opcode: "go", Type: Reporter, Handler: echo},
			}},
			want: "duplicate opcode",
		},
		{
			name: "unknown_menu",
			info: Info{ID: "x", Blocks: []Block{{
				Opcode:    "go",
				Type:      Command,
				Handler:   echo,
				Arguments: map[string]Argument{"WHERE": {Type: String, Menu: "places"}},
			}}},
			want: "unknown menu",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewRegistry(log.New(io.Discard)).Register(fakeExtension(tc.info))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestRegisterKeepsOrderAndReplaces(t *testing.T) {
	r := newTestRegistry(t,
		Info{ID: "b", Name: "B"},
		Info{ID: "a", Name: "A"},
		Info{ID: "b", Name: "B2"},
	)
	exts := r.Extensions()
	if len(exts) != 2 || exts[0].ID != "b" || exts[0].Name != "B2" || exts[1].ID != "a" {
		t.Fatalf("extensions = %+v", exts)
	}
}

func TestLabelsNeedNoHandler(t *testing.T) {
	r := newTestRegistry(t, Info{ID: "x", Blocks: []Block{{Type: Label, Text: "heading"}}})
	if _, ok := r.Lookup("x", ""); ok {
		t.Fatalf("labels must not be callable")
	}
}

func TestCall(t *testing.T) {
	rt := vm.New(vm.WithLogger(log.New(io.Discard)))
	sprite, err := rt.AddSprite(vm.SpriteInit{Name: "cat", Size: 100, Direction: 90})
	if err != nil {
		t.Fatalf("AddSprite: %v", err)
	}

	r := newTestRegistry(t, Info{
		ID: "x",
		Blocks: []Block{
			{Opcode: "echo", Type: Reporter, Handler: echo},
			{Opcode: "spriteOnly", Type: Reporter, Filter: []TargetType{Sprite}, Handler: echo},
			{Opcode: "anyTarget", Type: Reporter, NeedsTarget: true, Handler: func(_ Args, t *vm.Target) (any, error) {
				return t.Name(), nil
			}},
			{Opcode: "fails", Type: Reporter, Handler: func(Args, *vm.Target) (any, error) {
				return 0.0, errors.New("boom")
			}},
			{Opcode: "panics", Type: Reporter, Handler: func(Args, *vm.Target) (any, error) {
				panic("boom")
			}},
		},
	})

	tests := []struct {
		name   string
		extID  string
		opcode string
		args   Args
		target *vm.Target
		want   any
	}{
		{"echo", "x", "echo", Args{"TEXT": "hi"}, sprite, "hi"},
		{"nil_args", "x", "echo", nil, sprite, ""},
		{"sprite_block_on_sprite", "x", "spriteOnly", Args{"TEXT": 3.5}, sprite, "3.5"},
		{"sprite_block_on_stage", "x", "spriteOnly", Args{"TEXT": "hi"}, rt.Stage(), nil},
		{"no_target_block_without_target", "x", "echo", Args{"TEXT": "hi"}, nil, "hi"},
		{"sprite_block_without_target", "x", "spriteOnly", Args{"TEXT": "hi"}, nil, nil},
		{"needs_target_on_stage", "x", "anyTarget", nil, rt.Stage(), "Stage"},
		{"needs_target_without_target", "x", "anyTarget", nil, nil, nil},
		{"handler_error_keeps_value", "x", "fails", nil, sprite, 0.0},
		{"panic_is_neutral", "x", "panics", nil, sprite, nil},
		{"unknown_block", "x", "nope", nil, sprite, nil},
		{"unknown_extension", "y", "echo", nil, sprite, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Call(tc.extID, tc.opcode, tc.args, tc.target); got != tc.want {
				t.Fatalf("Call = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestMenuItems(t *testing.T) {
	names := []string{"one"}
	r := newTestRegistry(t, Info{
		ID: "x",
		Menus: map[string]Menu{
			"static":  {Items: Items("a", "b")},
			"dynamic": {Dynamic: func() []MenuItem { return Items(names...) }},
		},
	})

	items, err := r.MenuItems("x", "static")
	if err != nil || !reflect.DeepEqual(Values(items), []string{"a", "b"}) {
		t.Fatalf("static = %v, %v", items, err)
	}

	names = append(names, "two")
	items, err = r.MenuItems("x", "dynamic")
	if err != nil || !reflect.DeepEqual(Values(items), []string{"one", "two"}) {
		t.Fatalf("dynamic = %v, %v", items, err)
	}

	if _, err := r.MenuItems("y", "static"); !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("unknown extension err = %v", err)
	}
	if _, err := r.MenuItems("x", "missing"); err == nil {
		t.Fatalf("expected an error for a missing menu")
	}
	if got := r.MenuNames("x"); !reflect.DeepEqual(got, []string{"dynamic", "static"}) {
		t.Fatalf("MenuNames = %v", got)
	}
}

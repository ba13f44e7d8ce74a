package blocks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/vm"
)

var (
	ErrUnknownExtension = errors.New("blocks: unknown extension")
	ErrUnknownBlock     = errors.New("blocks: unknown block")
	ErrFiltered         = errors.New("blocks: block not available for target")
)

// Registry holds registered extensions and dispatches block calls.
type Registry struct {
	logger *log.Logger
	infos  map[string]Info
	order  []string
}

func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{logger: logger, infos: map[string]Info{}}
}

// Register adds ext. Registering the same extension id twice replaces the
// earlier registration.
func (r *Registry) Register(ext Extension) error {
	info := ext.Info()
	if info.ID == "" {
		return fmt.Errorf("blocks: register %q: empty extension id", info.Name)
	}
	seen := make(map[string]bool, len(info.Blocks))
	for _, b := range info.Blocks {
		if b.Type == Label {
			continue
		}
		if b.Opcode == "" || b.Handler == nil {
			return fmt.Errorf("blocks: register %s: block %q has no opcode or handler", info.ID, b.Text)
		}
		if seen[b.Opcode] {
			return fmt.Errorf("blocks: register %s: duplicate opcode %q", info.ID, b.Opcode)
		}
		seen[b.Opcode] = true
		for name, arg := range b.Arguments {
			if arg.Menu == "" {
				continue
			}
			if _, ok := info.Menus[arg.Menu]; !ok {
				return fmt.Errorf("blocks: register %s: %s.%s uses unknown menu %q", info.ID, b.Opcode, name, arg.Menu)
			}
		}
	}
	if _, exists := r.infos[info.ID]; !exists {
		r.order = append(r.order, info.ID)
	}
	r.infos[info.ID] = info
	r.logger.Debug("extension registered", "id", info.ID, "blocks", len(seen))
	return nil
}

// Extensions returns registered extension infos in registration order.
func (r *Registry) Extensions() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.infos[id])
	}
	return out
}

// Lookup finds a block by extension id and opcode.
func (r *Registry) Lookup(extID, opcode string) (Block, bool) {
	info, ok := r.infos[extID]
	if !ok {
		return Block{}, false
	}
	for _, b := range info.Blocks {
		if b.Opcode == opcode && b.Type != Label {
			return b, true
		}
	}
	return Block{}, false
}

// MenuItems returns the current items of a menu, running its dynamic query
// when it has one.
func (r *Registry) MenuItems(extID, menu string) ([]MenuItem, error) {
	info, ok := r.infos[extID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, extID)
	}
	m, ok := info.Menus[menu]
	if !ok {
		return nil, fmt.Errorf("blocks: %s has no menu %q", extID, menu)
	}
	if m.Dynamic != nil {
		return m.Dynamic(), nil
	}
	return append([]MenuItem(nil), m.Items...), nil
}

// MenuNames returns the menu names of an extension, sorted.
func (r *Registry) MenuNames(extID string) []string {
	info := r.infos[extID]
	names := make([]string, 0, len(info.Menus))
	for name := range info.Menus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs a block for target. Failures never propagate: unknown blocks,
// filtered targets, handler errors and handler panics are logged and the
// neutral value is returned.
func (r *Registry) Call(extID, opcode string, args Args, target *vm.Target) (result any) {
	logger := r.logger.With("extension", extID, "opcode", opcode)
	if target != nil {
		logger = logger.With("target", target.Name())
	}

	b, ok := r.Lookup(extID, opcode)
	if !ok {
		logger.Error("block call failed", "err", ErrUnknownBlock)
		return nil
	}
	if !b.allows(target) {
		logger.Error("block call failed", "err", ErrFiltered)
		return nil
	}
	if args == nil {
		args = Args{}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("block panicked", "panic", rec)
			result = nil
		}
	}()

	value, err := b.Handler(args, target)
	if err != nil {
		logger.Error("block call failed", "err", err)
	}
	return value
}

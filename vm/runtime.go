// Package vm is the stage runtime the extensions plug into: a stage target
// plus sprite targets stored in an ECS world, with the lifecycle events
// extensions subscribe to.
package vm

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/common"
	"github.com/milk9111/stagekit/ecs"
	"github.com/milk9111/stagekit/ecs/component"
	"github.com/milk9111/stagekit/project"
)

const (
	EventTargetCreated ecs.EventType = "targetWasCreated"
	EventTargetRemoved ecs.EventType = "targetWasRemoved"
	EventProjectLoaded ecs.EventType = "projectLoaded"
	EventBeforeExecute ecs.EventType = "beforeExecute"
)

// MaxClones caps the number of live clones, like the editor does.
const MaxClones = 300

var (
	ErrDuplicateSprite = errors.New("vm: duplicate sprite name")
	ErrStageTarget     = errors.New("vm: operation not allowed on the stage")
	ErrCloneLimit      = errors.New("vm: clone limit reached")
	ErrTargetGone      = errors.New("vm: target no longer exists")
)

// TargetCreated is the payload of EventTargetCreated. Original is nil unless
// the new target is a clone.
type TargetCreated struct {
	Target   *Target
	Original *Target
}

type Runtime struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	logger    *log.Logger

	stageWidth  float64
	stageHeight float64
	packaged    bool
	project     *project.Project

	stage   ecs.Entity
	editing ecs.Entity
	frame   int
	clones  int

	alerts    []string
	alertSink func(string)
}

type Option func(*Runtime)

func WithLogger(l *log.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithStageSize(width, height float64) Option {
	return func(r *Runtime) {
		if width > 0 && height > 0 {
			r.stageWidth, r.stageHeight = width, height
		}
	}
}

// WithPackaged marks the runtime as a packaged build, which drops raw costume
// data after loading.
func WithPackaged(packaged bool) Option {
	return func(r *Runtime) { r.packaged = packaged }
}

// WithAlertSink forwards advisories raised through Alert.
func WithAlertSink(sink func(string)) Option {
	return func(r *Runtime) { r.alertSink = sink }
}

// New creates a runtime holding only the stage target.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		world:       ecs.NewWorld(),
		scheduler:   ecs.NewScheduler(),
		logger:      log.Default(),
		stageWidth:  project.DefaultStageWidth,
		stageHeight: project.DefaultStageHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.stage = r.createStage()
	return r
}

func (r *Runtime) World() *ecs.World { return r.world }

func (r *Runtime) Logger() *log.Logger { return r.logger }

// Project returns the last loaded project, if any.
func (r *Runtime) Project() *project.Project { return r.project }

// Packaged reports whether raw costume data was dropped after loading.
func (r *Runtime) Packaged() bool { return r.packaged }

// Frame returns the number of completed steps since the last load.
func (r *Runtime) Frame() int { return r.frame }

// StageSize returns the logical stage width and height.
func (r *Runtime) StageSize() (float64, float64) {
	return r.stageWidth, r.stageHeight
}

func (r *Runtime) SetStageSize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	r.stageWidth, r.stageHeight = width, height
}

// AddSystem appends a system that runs on every Step after BeforeExecute.
func (r *Runtime) AddSystem(s ecs.System) {
	r.scheduler.Add(s)
}

// Step runs one execution step.
func (r *Runtime) Step() {
	r.world.Events().Publish(ecs.Event{Type: EventBeforeExecute})
	r.scheduler.Update(r.world)
	r.frame++
}

// Alert raises a blocking advisory for the user. The runtime has no modal
// surface of its own, so the advisory is logged, kept for Alerts and handed
// to the configured sink.
func (r *Runtime) Alert(msg string) {
	r.logger.Warn("advisory", "message", msg)
	r.alerts = append(r.alerts, msg)
	if r.alertSink != nil {
		r.alertSink(msg)
	}
}

// Alerts returns every advisory raised so far.
func (r *Runtime) Alerts() []string {
	return append([]string(nil), r.alerts...)
}

func (r *Runtime) OnTargetCreated(fn func(TargetCreated)) {
	r.world.Events().Subscribe(EventTargetCreated, func(e ecs.Event) {
		if data, ok := e.Data.(TargetCreated); ok {
			fn(data)
		}
	})
}

func (r *Runtime) OnTargetRemoved(fn func(*Target)) {
	r.world.Events().Subscribe(EventTargetRemoved, func(e ecs.Event) {
		if t, ok := e.Data.(*Target); ok {
			fn(t)
		}
	})
}

func (r *Runtime) OnProjectLoaded(fn func()) {
	r.world.Events().Subscribe(EventProjectLoaded, func(ecs.Event) { fn() })
}

func (r *Runtime) OnBeforeExecute(fn func()) {
	r.world.Events().Subscribe(EventBeforeExecute, func(ecs.Event) { fn() })
}

// Stage returns the stage target.
func (r *Runtime) Stage() *Target {
	return &Target{rt: r, e: r.stage}
}

// Targets returns the stage followed by every sprite and clone.
func (r *Runtime) Targets() []*Target {
	ents := ecs.Query(r.world, component.IdentityComponent.Kind())
	out := make([]*Target, 0, len(ents))
	out = append(out, r.Stage())
	for _, e := range ents {
		if e == r.stage {
			continue
		}
		out = append(out, &Target{rt: r, e: e})
	}
	return out
}

// Target returns the live target with the given id.
func (r *Runtime) Target(id ecs.Entity) (*Target, bool) {
	if !ecs.Has(r.world, id, component.IdentityComponent.Kind()) {
		return nil, false
	}
	return &Target{rt: r, e: id}, true
}

// TargetByName returns the original sprite with the given name.
func (r *Runtime) TargetByName(name string) (*Target, bool) {
	for _, t := range r.Targets() {
		if t.IsOriginal() && t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// EditingTarget returns the sprite selected in the editor, or the stage.
func (r *Runtime) EditingTarget() *Target {
	if t, ok := r.Target(r.editing); ok {
		return t
	}
	return r.Stage()
}

func (r *Runtime) SetEditingTarget(t *Target) {
	if t != nil && t.Alive() {
		r.editing = t.e
	}
}

// SpriteInit describes a sprite to install.
type SpriteInit struct {
	Name          string
	X, Y          float64
	Size          float64
	Direction     float64
	RotationStyle string
	Visible       bool
	Costumes      []component.Costume
	Current       int
}

// AddSprite installs a new original sprite and announces it with
// EventTargetCreated.
func (r *Runtime) AddSprite(si SpriteInit) (*Target, error) {
	if _, exists := r.TargetByName(si.Name); exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSprite, si.Name)
	}
	t, err := r.installSprite(si)
	if err != nil {
		return nil, err
	}
	r.world.Events().Publish(ecs.Event{Type: EventTargetCreated, Data: TargetCreated{Target: t}})
	return t, nil
}

// Clone copies every piece of target state into a new clone and announces
// it with the original attached.
func (r *Runtime) Clone(t *Target) (*Target, error) {
	if t == nil || !t.Alive() {
		return nil, ErrTargetGone
	}
	if t.IsStage() {
		return nil, ErrStageTarget
	}
	if r.clones >= MaxClones {
		return nil, ErrCloneLimit
	}

	e := ecs.CreateEntity(r.world)
	id, _ := ecs.Get(r.world, t.e, component.IdentityComponent.Kind())
	parent := t.e
	if !id.Original {
		parent = ecs.Entity(id.Parent)
	}
	if err := ecs.Add(r.world, e, component.IdentityComponent.Kind(), &component.Identity{
		Name:   id.Name,
		Parent: uint64(parent),
	}); err != nil {
		return nil, fmt.Errorf("vm: clone %s: %w", id.Name, err)
	}
	if tr, ok := ecs.Get(r.world, t.e, component.TransformComponent.Kind()); ok {
		copied := *tr
		_ = ecs.Add(r.world, e, component.TransformComponent.Kind(), &copied)
	}
	if look, ok := ecs.Get(r.world, t.e, component.LookComponent.Kind()); ok {
		copied := *look
		_ = ecs.Add(r.world, e, component.LookComponent.Kind(), &copied)
	}
	if costumes, ok := ecs.Get(r.world, t.e, component.CostumesComponent.Kind()); ok {
		copied := *costumes
		_ = ecs.Add(r.world, e, component.CostumesComponent.Kind(), &copied)
	}
	r.clones++

	clone := &Target{rt: r, e: e}
	r.world.Events().Publish(ecs.Event{Type: EventTargetCreated, Data: TargetCreated{Target: clone, Original: t}})
	return clone, nil
}

// Dispose removes a sprite or clone. The stage cannot be removed.
func (r *Runtime) Dispose(t *Target) error {
	if t == nil || !t.Alive() {
		return ErrTargetGone
	}
	if t.IsStage() {
		return ErrStageTarget
	}
	r.world.Events().Publish(ecs.Event{Type: EventTargetRemoved, Data: t})
	if !t.IsOriginal() {
		r.clones--
	}
	ecs.DestroyEntity(r.world, t.e)
	return nil
}

// LoadProject replaces every target with the project's sprites. Targets are
// installed silently and EventProjectLoaded fires once all exist.
func (r *Runtime) LoadProject(p *project.Project) error {
	if p == nil {
		return fmt.Errorf("vm: load project: %w", project.ErrInvalidProject)
	}

	sis := make([]SpriteInit, 0, len(p.Sprites))
	for _, s := range p.Sprites {
		costumes, err := p.Costumes(s)
		if err != nil {
			return fmt.Errorf("vm: load project: %w", err)
		}
		sis = append(sis, SpriteInit{
			Name:          s.Name,
			X:             s.X,
			Y:             s.Y,
			Size:          *s.Size,
			Direction:     *s.Direction,
			RotationStyle: s.RotationStyle,
			Visible:       *s.Visible,
			Costumes:      costumes,
			Current:       s.CurrentCostume,
		})
	}

	for _, t := range r.Targets() {
		r.world.Events().Publish(ecs.Event{Type: EventTargetRemoved, Data: t})
	}
	ecs.Reset(r.world)
	r.clones = 0
	r.frame = 0
	r.editing = 0
	r.project = p
	r.packaged = p.Packaged
	r.SetStageSize(p.Stage.Width, p.Stage.Height)
	r.stage = r.createStage()

	for _, si := range sis {
		t, err := r.installSprite(si)
		if err != nil {
			return fmt.Errorf("vm: load project: %w", err)
		}
		if r.editing == 0 {
			r.editing = t.e
		}
	}

	r.logger.Info("project loaded", "name", p.Name, "sprites", len(sis))
	r.world.Events().Publish(ecs.Event{Type: EventProjectLoaded, Data: p})
	return nil
}

func (r *Runtime) createStage() ecs.Entity {
	e := ecs.CreateEntity(r.world)
	_ = ecs.Add(r.world, e, component.IdentityComponent.Kind(), &component.Identity{
		Name:     "Stage",
		Original: true,
		Stage:    true,
	})
	_ = ecs.Add(r.world, e, component.TransformComponent.Kind(), &component.Transform{Size: 100, Direction: 90})
	return e
}

func (r *Runtime) installSprite(si SpriteInit) (*Target, error) {
	if si.Name == "" {
		return nil, fmt.Errorf("vm: sprite has no name")
	}
	style := si.RotationStyle
	if style == "" {
		style = component.RotationAllAround
	}
	current := si.Current
	if current < 0 || current >= len(si.Costumes) {
		current = 0
	}
	size := si.Size
	if !common.Finite(size) {
		size = 100
	}
	var costume component.Costume
	if len(si.Costumes) > 0 {
		costume = si.Costumes[current]
	}
	w, h := r.StageSize()
	size = fenceSize(size, costume, w, h)

	e := ecs.CreateEntity(r.world)
	if err := ecs.Add(r.world, e, component.IdentityComponent.Kind(), &component.Identity{Name: si.Name, Original: true}); err != nil {
		return nil, err
	}
	_ = ecs.Add(r.world, e, component.TransformComponent.Kind(), &component.Transform{
		X:         si.X,
		Y:         si.Y,
		Size:      size,
		Direction: si.Direction,
	})
	_ = ecs.Add(r.world, e, component.LookComponent.Kind(), &component.Look{Visible: si.Visible, RotationStyle: style})
	_ = ecs.Add(r.world, e, component.CostumesComponent.Kind(), &component.Costumes{List: si.Costumes, Current: current})
	return &Target{rt: r, e: e}, nil
}

package project

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stagekit/ecs/component"
)

const (
	DefaultStageWidth  = 480
	DefaultStageHeight = 360
)

var ErrInvalidProject = errors.New("project: invalid project")

type Project struct {
	Stage    StageSpec    `yaml:"stage"`
	Packaged bool         `yaml:"packaged"`
	Sprites  []SpriteSpec `yaml:"sprites"`

	// Name is the file the project was read from.
	Name string `yaml:"-"`

	fsys fs.FS
}

type StageSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SpriteSpec struct {
	Name           string        `yaml:"name"`
	X              float64       `yaml:"x"`
	Y              float64       `yaml:"y"`
	Size           *float64      `yaml:"size"`
	Direction      *float64      `yaml:"direction"`
	RotationStyle  string        `yaml:"rotation_style"`
	Visible        *bool         `yaml:"visible"`
	CurrentCostume int           `yaml:"current_costume"`
	Script         string        `yaml:"script"`
	Costumes       []CostumeSpec `yaml:"costumes"`
}

type CostumeSpec struct {
	Name            string   `yaml:"name"`
	File            string   `yaml:"file"`
	Width           float64  `yaml:"width"`
	Height          float64  `yaml:"height"`
	RotationCenterX *float64 `yaml:"rotation_center_x"`
	RotationCenterY *float64 `yaml:"rotation_center_y"`
}

// Parse decodes a project document. Costume files and scripts are resolved
// against fsys, which may be nil for projects without external files.
func Parse(data []byte, fsys fs.FS) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("project: unmarshal: %w", err)
	}
	p.fsys = fsys
	if err := p.normalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Project) normalize() error {
	if p.Stage.Width == 0 {
		p.Stage.Width = DefaultStageWidth
	}
	if p.Stage.Height == 0 {
		p.Stage.Height = DefaultStageHeight
	}
	if p.Stage.Width < 0 || p.Stage.Height < 0 {
		return fmt.Errorf("%w: stage size %gx%g", ErrInvalidProject, p.Stage.Width, p.Stage.Height)
	}

	seen := make(map[string]bool, len(p.Sprites))
	for i := range p.Sprites {
		s := &p.Sprites[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return fmt.Errorf("%w: sprite %d has no name", ErrInvalidProject, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate sprite %q", ErrInvalidProject, s.Name)
		}
		seen[s.Name] = true

		if s.Size == nil {
			s.Size = float64Ptr(100)
		}
		if s.Direction == nil {
			s.Direction = float64Ptr(90)
		}
		if s.Visible == nil {
			s.Visible = boolPtr(true)
		}
		switch s.RotationStyle {
		case "":
			s.RotationStyle = component.RotationAllAround
		case component.RotationAllAround, component.RotationLeftRight, component.RotationDontRotate:
		default:
			return fmt.Errorf("%w: sprite %q rotation style %q", ErrInvalidProject, s.Name, s.RotationStyle)
		}
		for j, c := range s.Costumes {
			if c.Width < 0 || c.Height < 0 {
				return fmt.Errorf("%w: sprite %q costume %d has negative size", ErrInvalidProject, s.Name, j)
			}
		}
	}
	return nil
}

// Costumes decodes the costume list of a sprite. Sizes missing from the
// document come from the asset header; rotation centres default to the
// middle of the costume. Packaged projects keep the format but drop the raw
// asset bytes.
func (p *Project) Costumes(s SpriteSpec) ([]component.Costume, error) {
	out := make([]component.Costume, 0, len(s.Costumes))
	for i, spec := range s.Costumes {
		c := component.Costume{
			Name:   spec.Name,
			Width:  spec.Width,
			Height: spec.Height,
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("costume%d", i+1)
		}
		if spec.File != "" {
			data, err := p.ReadFile(spec.File)
			if err != nil {
				return nil, fmt.Errorf("project: sprite %q costume %q: %w", s.Name, c.Name, err)
			}
			format, w, h := decodeAsset(data)
			c.Format = format
			if c.Width == 0 {
				c.Width = w
			}
			if c.Height == 0 {
				c.Height = h
			}
			if !p.Packaged {
				c.Data = data
			}
		}
		c.RotationCenterX = c.Width / 2
		c.RotationCenterY = c.Height / 2
		if spec.RotationCenterX != nil {
			c.RotationCenterX = *spec.RotationCenterX
		}
		if spec.RotationCenterY != nil {
			c.RotationCenterY = *spec.RotationCenterY
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadFile reads a file relative to the project.
func (p *Project) ReadFile(name string) ([]byte, error) {
	if p == nil || p.fsys == nil {
		return nil, fmt.Errorf("project: read %s: %w", name, fs.ErrNotExist)
	}
	return fs.ReadFile(p.fsys, path.Clean(strings.TrimPrefix(name, "./")))
}

// Sprite returns the sprite spec with the given name.
func (p *Project) Sprite(name string) (SpriteSpec, bool) {
	if p == nil {
		return SpriteSpec{}, false
	}
	for _, s := range p.Sprites {
		if s.Name == name {
			return s, true
		}
	}
	return SpriteSpec{}, false
}

func decodeAsset(data []byte) (format string, width, height float64) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return format, float64(cfg.Width), float64(cfg.Height)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "svg", 0, 0
	}
	return "", 0, 0
}

func float64Ptr(f float64) *float64 {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

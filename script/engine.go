package script

import (
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/vm"
)

// buildEngine binds the helper functions scripts see as `engine` to t.
func (s *System) buildEngine(t *vm.Target) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["name"] = &tengo.UserFunction{Name: "name", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: t.Name()}, nil
	}}

	values["x"] = &tengo.UserFunction{Name: "x", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: t.X()}, nil
	}}

	values["y"] = &tengo.UserFunction{Name: "y", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: t.Y()}, nil
	}}

	values["set_xy"] = &tengo.UserFunction{Name: "set_xy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		t.SetXY(objectAsFloat(args[0]), objectAsFloat(args[1]))
		return tengo.TrueValue, nil
	}}

	values["change_xy"] = &tengo.UserFunction{Name: "change_xy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		t.SetXY(t.X()+objectAsFloat(args[0]), t.Y()+objectAsFloat(args[1]))
		return tengo.TrueValue, nil
	}}

	values["set_size"] = &tengo.UserFunction{Name: "set_size", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		t.SetSize(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["set_direction"] = &tengo.UserFunction{Name: "set_direction", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		t.SetDirection(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["set_costume"] = &tengo.UserFunction{Name: "set_costume", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		if name, ok := args[0].(*tengo.String); ok {
			idx := t.CostumeIndexByName(name.Value)
			if idx < 0 {
				return tengo.FalseValue, nil
			}
			t.SetCostume(idx)
			return tengo.TrueValue, nil
		}
		t.SetCostume(int(objectAsFloat(args[0])) - 1)
		return tengo.TrueValue, nil
	}}

	values["is_clone"] = &tengo.UserFunction{Name: "is_clone", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if t.IsOriginal() {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["frame"] = &tengo.UserFunction{Name: "frame", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(s.rt.Frame())}, nil
	}}

	values["clone"] = &tengo.UserFunction{Name: "clone", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if _, err := s.rt.Clone(t); err != nil {
			s.logger.Warn("clone failed", "target", t.Name(), "err", err)
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["delete_clone"] = &tengo.UserFunction{Name: "delete_clone", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if t.IsOriginal() {
			return tengo.FalseValue, nil
		}
		if err := s.rt.Dispose(t); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.logger.Info(strings.Join(parts, " "), "target", t.Name())
		return tengo.UndefinedValue, nil
	}}

	if s.registry != nil {
		for _, info := range s.registry.Extensions() {
			values[info.ID] = s.extensionMap(info, t)
		}
	}

	return &tengo.ImmutableMap{Value: values}
}

// extensionMap exposes an extension's blocks as functions taking one map of
// arguments keyed by argument name.
func (s *System) extensionMap(info blocks.Info, t *vm.Target) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	for _, b := range info.Blocks {
		if b.Type == blocks.Label {
			continue
		}
		extID, opcode := info.ID, b.Opcode
		values[opcode] = &tengo.UserFunction{Name: opcode, Value: func(args ...tengo.Object) (tengo.Object, error) {
			callArgs := blocks.Args{}
			if len(args) > 0 {
				if m, ok := objectToAny(args[0]).(map[string]any); ok {
					callArgs = m
				}
			}
			return anyToObject(s.registry.Call(extID, opcode, callArgs, t)), nil
		}}
	}
	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) float64 {
	if obj == nil {
		return 0
	}
	if f, ok := tengo.ToFloat64(obj); ok {
		return f
	}
	return blocks.ToNumber(objectAsString(obj))
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}

func anyToObject(v any) tengo.Object {
	switch x := v.(type) {
	case nil:
		return tengo.UndefinedValue
	case []string:
		arr := make([]tengo.Object, 0, len(x))
		for _, s := range x {
			arr = append(arr, &tengo.String{Value: s})
		}
		return &tengo.Array{Value: arr}
	}
	obj, err := tengo.FromInterface(v)
	if err != nil {
		return &tengo.String{Value: blocks.ToString(v)}
	}
	return obj
}

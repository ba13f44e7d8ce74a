package blocks

import (
	"math"
	"strconv"
	"strings"
)

// Args holds block arguments keyed by argument name. Values arrive untyped
// from scripts and are cast on read.
type Args map[string]any

// Has reports whether the argument was supplied.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Raw returns the uncast argument.
func (a Args) Raw(name string) any {
	return a[name]
}

func (a Args) Number(name string) float64 {
	return ToNumber(a[name])
}

func (a Args) String(name string) string {
	return ToString(a[name])
}

func (a Args) Bool(name string) bool {
	return ToBool(a[name])
}

// ToNumber casts v the way the block runtime does: numeric strings parse,
// anything unparsable or NaN becomes 0, booleans become 1 or 0.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case float32:
		return ToNumber(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		switch strings.ToLower(s) {
		case "infinity", "+infinity":
			return math.Inf(1)
		case "-infinity":
			return math.Inf(-1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	}
	return 0
}

func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return formatNumber(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case []string:
		return strings.Join(s, " ")
	}
	return ""
}

// ToBool treats "false", "0", "" and zero values as false.
func ToBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "off", "no":
			return false
		}
		return true
	}
	return ToNumber(v) != 0
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

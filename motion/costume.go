package motion

import (
	"fmt"
	"math"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/common"
	"github.com/milk9111/stagekit/vm"
)

const packagedAdvisory = `To use the costume format block, the creator of the packaged project must uncheck "Remove raw asset data after loading to save RAM" under advanced settings in the packager.`

func (e *Extension) costumeAttribute(args blocks.Args, t *vm.Target) (any, error) {
	costumes := t.Costumes()
	idx := costumeIndex(args.Raw("COSTUME"), t)
	if idx < 0 || idx >= len(costumes) {
		return 0.0, fmt.Errorf("%w: %v", ErrCostumeNotFound, args.Raw("COSTUME"))
	}
	c := costumes[idx]

	switch args.String("ATTRIBUTE") {
	case "width":
		return math.Ceil(c.Width), nil
	case "height":
		return math.Ceil(c.Height), nil
	case "format":
		if e.rt.Packaged() {
			e.rt.Alert(packagedAdvisory)
			return "unknown", ErrUnsupportedEnvironment
		}
		return c.Format, nil
	case "rotationCenterX":
		return c.RotationCenterX, nil
	case "rotationCenterY":
		return c.RotationCenterY, nil
	}
	return "", nil
}

// costumeIndex reads a costume argument. Numbers are 1-based and wrap around
// the costume list, so 0 is the last costume. NaN and infinities pick the
// first costume.
// Anything else is a costume name; -1 means no match.
func costumeIndex(v any, t *vm.Target) int {
	var n float64
	switch num := v.(type) {
	case float64:
		n = num
	case int:
		n = float64(num)
	case int64:
		n = float64(num)
	default:
		return t.CostumeIndexByName(blocks.ToString(v))
	}

	count := len(t.Costumes())
	if count == 0 {
		return -1
	}
	n = math.Floor(n - 1 + 0.5)
	if !common.Finite(n) {
		n = 0
	}
	if math.Abs(n) > math.MaxInt32 {
		n = math.Mod(n, float64(count))
	}
	return common.WrapClamp(int(n), 0, count-1)
}

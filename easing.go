package flateralus

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// easings maps the names accepted by easing controls to gween easing
// functions.
var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"outBounce":  ease.OutBounce,
	"outElastic": ease.OutElastic,
}

// Easing returns the easing function registered under name.
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// EasingNames returns the registered easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

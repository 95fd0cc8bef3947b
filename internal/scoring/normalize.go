package scoring

import "fmt"

// NormalizeErrors folds minor errors into major ones at the given conversion
// ratio: every full group of ratio minors becomes one major, the remainder
// stays minor. The policy lives here once so every criterion and rubric that
// demotes minors applies it identically.
func NormalizeErrors(major, minor, ratio int) (effectiveMajor, effectiveMinor int, err error) {
	if ratio < 1 {
		return 0, 0, fmt.Errorf("normalize errors: ratio must be >= 1, got %d", ratio)
	}
	if major < 0 || minor < 0 {
		return 0, 0, fmt.Errorf("normalize errors: counts must be non-negative, got major=%d minor=%d", major, minor)
	}
	return major + minor/ratio, minor % ratio, nil
}

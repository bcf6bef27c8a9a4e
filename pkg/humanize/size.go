package humanize

import "fmt"

var units = []string{"B", "KB", "MB", "GB", "TB"}

// Size scales i bytes to the largest unit that keeps the value at or above
// one.
func Size(i int64) (float64, string) {
	v := float64(i)
	u := 0

	for v >= 1024 && u < len(units)-1 {
		v /= 1024
		u++
	}

	return v, units[u]
}

func Format(i int64) string {
	v, unit := Size(i)

	if unit == "B" {
		return fmt.Sprintf("%d%s", i, unit)
	}

	return fmt.Sprintf("%.1f%s", v, unit)
}

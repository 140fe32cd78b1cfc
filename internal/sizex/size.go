// Package sizex formats byte counts for people.
package sizex

import (
	"math"
	"strconv"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// Format renders n using 1024-based units with at most two decimals and
// no trailing zeros, e.g. 0 -> "0 B", 1536 -> "1.5 KB", 2<<30 -> "2 GB".
func Format(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

package traverse

import "fmt"

// FormatSize renders a byte count the way the sink displays it: raw bytes
// under 1024, otherwise divided by 1024 per unit step with two decimals.
// GB is the ceiling: larger values keep the GB label rather than moving on
// to TB.
//
//	500           -> "500 B"
//	2048          -> "2.00 KB"
//	1048576       -> "1.00 MB"
//	5368709120    -> "5.00 GB"
func FormatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	for _, unit := range []string{"KB", "MB"} {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f GB", v)
}

package upload

import "fmt"

const (
	kilobyte = 1024
	megabyte = 1048576
)

// FormatSize renders a byte count the way item responses expose it.
func FormatSize(n int64) string {
	switch {
	case n < kilobyte:
		return fmt.Sprintf("%d bytes", n)
	case n < megabyte:
		return fmt.Sprintf("%.2f KB", float64(n)/kilobyte)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/megabyte)
	}
}

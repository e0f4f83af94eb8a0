package utils

import "fmt"

// HumanByteSize renders a byte count with one decimal place, dividing by
// 1024 through B, KB, MB and GB with TB as the ceiling.
func HumanByteSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}

	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}

	return fmt.Sprintf("%.1f TB", value)
}

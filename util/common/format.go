package common

import (
	"fmt"
	"strings"
)

// FormatSize renders a byte count with a binary unit suffix.
func FormatSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	unitIndex := 0
	value := float64(size)

	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%d%s", size, units[0])
	}
	return fmt.Sprintf("%.2f%s", value, units[unitIndex])
}

// SanitizeFilenamePart replaces characters that would break a flat file
// name (spaces and path separators) with underscores.
func SanitizeFilenamePart(s string) string {
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(s)
}

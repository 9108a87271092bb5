package common

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	headerColor.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

func PrintSuccess(format string, args ...interface{}) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func PrintFailure(format string, args ...interface{}) {
	failureColor.Printf("✗ "+format+"\n", args...)
}

func PrintWarning(format string, args ...interface{}) {
	warningColor.Printf("~ "+format+"\n", args...)
}

// TruncateId shortens long identifiers for tabular output
func TruncateId(id string) string {
	if id == "" {
		return "none"
	}
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/storesync/schema"
)

// Stock label constants.
const (
	SoldOutValue  = "Sold out"  // No units left
	LowStockValue = "Low stock" // A handful of units left
	InStockValue  = "In stock"  // Plenty of units
)

// DateTimeFormat is the timestamp layout used in CSV and table output.
const DateTimeFormat = "2006-01-02 15:04:05"

// LowStockThreshold is the unit count at or below which stock is reported as low.
const LowStockThreshold = 3

// Color variables for console output.
var (
	SoldOutColor  = color.New(color.FgRed, color.Bold) // SoldOutColor represents standard danger.
	LowStockColor = color.New(color.FgYellow)          // LowStockColor represents standard caution, not bold.
	InStockColor  = color.New(color.FgGreen)           // InStockColor represents availability.
	UsedColor     = color.New(color.FgCyan)            // UsedColor marks second-hand lines.
)

// GetPlainStockLabel returns a plain text label for a stock level.
// This is the core logic used for CSV, JSON and table printing.
func GetPlainStockLabel(stock int) string {
	switch {
	case stock <= 0:
		return SoldOutValue
	case stock <= LowStockThreshold:
		return LowStockValue
	default:
		return InStockValue
	}
}

// GetColorStockLabel returns a colored stock label for console output (table).
func GetColorStockLabel(stock int) string {
	text := GetPlainStockLabel(stock)
	switch text {
	case SoldOutValue:
		return SoldOutColor.Sprint(text)
	case LowStockValue:
		return LowStockColor.Sprint(text)
	default:
		return InStockColor.Sprint(text)
	}
}

// GetConditionLabel returns the condition, colored when it is not new.
func GetConditionLabel(c schema.Condition, useColors bool) string {
	if useColors && c == schema.UsedCondition {
		return UsedColor.Sprint(string(c))
	}
	return string(c)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(filePath)
	if err != nil {
		return os.Stdout, fmt.Errorf("cannot open output file %s: %w", filePath, err)
	}
	return file, nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for the record store.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".storesync.db"
	}
	return filepath.Join(homeDir, ".storesync.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

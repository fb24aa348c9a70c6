// Package output provides terminal output utilities for camsort.
//
// This package includes table rendering for sort runs and per-category
// summaries, plus progress indicators for long copy operations. Tables use
// ASCII characters and ANSI color codes; progress indicators are
// thread-safe and degrade to plain lines on non-TTY writers.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/wildtrack-systems/camsort/internal/separator"
	"github.com/wildtrack-systems/camsort/internal/store"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRunTable renders past sort runs, newest first (the order the store
// returns them in).
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No sort runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-14s %-8s %-8s %-8s %-10s %s\n",
		"ID", "Started", "Images", "Copied", "Errors", "Status", "Output"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		status := run.Status
		if run.ErrorCount > 0 && run.Status == store.StatusComplete {
			status = colorize(colorYellow, status)
		}
		sb.WriteString(fmt.Sprintf("%-5d %-14s %-8d %-8d %-8d %-10s %s\n",
			run.ID,
			formatRelativeTime(run.StartedAt),
			run.ImageCount,
			run.CopiedCount,
			run.ErrorCount,
			status,
			truncate(run.OutputRoot, 30)))
	}

	return sb.String()
}

// RenderCategoryTable renders the per-category outcome of a sort run.
func RenderCategoryTable(summary *separator.Summary) string {
	if summary == nil || summary.Copied == 0 {
		return "No files copied.\n"
	}

	categories := make([]string, 0, len(summary.Counts))
	for category := range summary.Counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var totalBytes int64
	sizeByCategory := make(map[string]int64)
	for _, record := range summary.Records {
		sizeByCategory[record.Folder] += record.SizeBytes
		totalBytes += record.SizeBytes
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-8s %s\n", "Folder", "Images", "Size"))
	sb.WriteString(strings.Repeat("─", 36))
	sb.WriteString("\n")

	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("%-16s %-8d %s\n",
			category, summary.Counts[category], formatSize(sizeByCategory[category])))
	}

	sb.WriteString(strings.Repeat("─", 36))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-16s %-8d %s\n", "total", summary.Copied, formatSize(totalBytes)))

	if len(summary.Errors) > 0 {
		sb.WriteString("\n")
		sb.WriteString(colorize(colorRed, fmt.Sprintf("%d file(s) failed:\n", len(summary.Errors))))
		for _, fe := range summary.Errors {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", fe.File, fe.Err))
		}
	}

	return sb.String()
}

// formatSize converts bytes to a human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

// truncate shortens a string to maxLen, adding "..." when it cuts.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package chapters

import (
	"fmt"
	"strings"
)

var invalidFilename = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeFilename replaces characters that are not allowed in file names
// on common filesystems with an underscore.
func SanitizeFilename(s string) string {
	return invalidFilename.Replace(s)
}

// FileName builds "<title>.<ext>" for the n-th (1-based) chapter, falling
// back to Chapter_<n> when the title is blank.
func FileName(title string, n int, ext string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Chapter_%d", n)
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return SanitizeFilename(title)
	}

	return SanitizeFilename(title) + "." + ext
}

// NovelBaseName is the "{title} - {author}" stem used for default output
// paths.
func NovelBaseName(title, author string) string {
	return SanitizeFilename(fmt.Sprintf("%s - %s", title, author))
}

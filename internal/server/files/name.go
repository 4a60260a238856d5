package files

import (
	"fmt"
	"strings"
	"time"
)

// DefaultExtension is used when an uploaded filename carries no extension,
// so every stored name and suggested download name ends in one.
const DefaultExtension = "bin"

// GenerateName builds the collision-resistant storage name for an upload:
// "{unixSeconds}_{base}.{ext}". Two uploads at different seconds can never
// collide; same-second collisions are handled by the caller retrying with
// GenerateNameWithSuffix.
func GenerateName(originalName string, now time.Time) string {
	base, ext := splitName(originalName)
	return fmt.Sprintf("%d_%s.%s", now.Unix(), base, ext)
}

// GenerateNameWithSuffix is the same-second tie-break: it inserts a short
// random marker between the base name and the extension.
func GenerateNameWithSuffix(originalName, suffix string, now time.Time) string {
	base, ext := splitName(originalName)
	return fmt.Sprintf("%d_%s_%s.%s", now.Unix(), base, suffix, ext)
}

// splitName divides an original filename into base and extension on the last
// dot and strips anything that looks like a directory, so the result is always
// safe as a single path component.
func splitName(originalName string) (string, string) {
	name := sanitizeComponent(originalName)

	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	if ext == "" {
		ext = DefaultExtension
	}
	return base, ext
}

// sanitizeComponent drops any path portion of the client-supplied name.
// Browsers and some clients send full paths; only the final component is kept.
func sanitizeComponent(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

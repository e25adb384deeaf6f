package export

import (
	"regexp"
	"strings"
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds a filesystem-safe .docx name from a title, falling back to
// the document id.
func FileName(title, docID string) string {
	name := strings.Trim(reUnsafe.ReplaceAllString(strings.TrimSpace(title), "_"), "._-")
	if len(name) > 80 {
		name = name[:80]
	}
	if name == "" {
		name = docID
		if len(name) > 16 {
			name = name[:16]
		}
	}
	if name == "" {
		name = "summary"
	}
	return name + ".docx"
}

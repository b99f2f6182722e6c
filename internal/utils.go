package internal

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// noteNamespace scopes note GUIDs so they never collide with other tools' notes
var noteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://codeberg.org/snonux/markanki"))

// NoteGUID returns a stable Anki note GUID for a normalized word key within
// a group (the tag of the source document). The same pair always yields the
// same GUID, so re-importing a deck updates existing notes instead of
// duplicating them, while a word shared by two documents stays two notes.
func NoteGUID(key, group string) string {
	name := key
	if group != "" {
		name += "\x00" + group
	}
	return uuid.NewSHA1(noteNamespace, []byte(name)).String()
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

package transport

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// objectKey places an upload under prefix/folder/<uuid>/<name>. The uuid
// keeps same-named files from overwriting each other.
func objectKey(prefix, folderID, name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	parts := []string{}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	if folderID != "" {
		parts = append(parts, folderID)
	}
	parts = append(parts, uuid.NewString(), name)
	return path.Join(parts...)
}

package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// objectAlphabet keeps object names lowercase and URL safe
const objectAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NormalizePath converts any backslash separators to forward slashes and
// strips leading slashes.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimLeft(path.Clean("/"+p), "/")
}

// ObjectPath builds a unique object path under prefix:
//
//	<prefix>/<unix-millis>-<nanoid>-<slug>.<ext>
func ObjectPath(prefix, filename string, now time.Time) string {
	base := path.Base(NormalizePath(filename))
	ext := strings.ToLower(path.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "file"
	}

	object := fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), gonanoid.MustGenerate(objectAlphabet, 8), name, ext)
	if prefix != "" {
		return path.Join(prefix, object)
	}
	return object
}

// OriginalName restores the display name from an object path built by
// ObjectPath. Paths that don't follow the layout are returned as their base
// name.
func OriginalName(objectPath string) string {
	base := path.Base(NormalizePath(objectPath))
	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return base
	}
	return parts[2]
}

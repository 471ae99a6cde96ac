// Package naming derives thumbnail filenames and output formats from
// the original file name.
package naming

import (
	"fmt"
	"path"
	"strings"
)

// ResolveOutputFormat returns the format thumbnails are encoded to.
//
// An explicit override is lower-cased. Without one, the extension of the
// original file is used exactly as uploaded, so 'photo.PNG' yields 'PNG'.
func ResolveOutputFormat(override, originalFilename string) string {
	if override != "" {
		return strings.ToLower(override)
	}

	_, ext := splitExt(path.Base(originalFilename))
	return ext
}

// ThumbFilename computes the name of the thumbnail 'thumbName' for the
// given original. The directory part is preserved:
//
//	ThumbFilename("a/b/photo.png", "thumb", "jpg") == "a/b/photo_thumb.jpg"
func ThumbFilename(originalFilename, thumbName, format string) string {
	dir, base := splitDir(originalFilename)
	stem, _ := splitExt(base)

	name := fmt.Sprintf("%s_%s", stem, thumbName)
	if format != "" {
		name = name + "." + format
	}

	return dir + name
}

// URLBase returns the last path segment of a URL, without its query
// string.
func URLBase(rawURL string) string {
	u, _, _ := strings.Cut(rawURL, "?")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// Splits on the last '/', keeping the separator on the directory part.
func splitDir(name string) (string, string) {
	i := strings.LastIndex(name, "/")
	return name[:i+1], name[i+1:]
}

func splitExt(base string) (string, string) {
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return base, ""
	}
	return base[:i], base[i+1:]
}

// Package upload decodes base64 data-URL images posted with item and
// profile requests and writes them under the configured public directory.
package upload

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var dataURLPattern = regexp.MustCompile(`(?i)^data:(image/(png|jpeg|jpg));base64,(.*)$`)

// ErrNotDataURL is returned when the payload is not a png/jpeg data URL.
var ErrNotDataURL = errors.New("not an image data URL")

// SaveDataURL decodes a data:image/...;base64 payload and writes it to
// <root>/<subdir>/<name>.<ext>. Returns the public URL path for storage.
func SaveDataURL(root, subdir, name, dataURL string) (string, error) {
	m := dataURLPattern.FindStringSubmatch(dataURL)
	if m == nil {
		return "", ErrNotDataURL
	}

	buf, err := base64.StdEncoding.DecodeString(m[3])
	if err != nil {
		return "", err
	}

	ext := "jpg"
	if strings.Contains(strings.ToLower(m[1]), "png") {
		ext = "png"
	}

	dir := filepath.Join(root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := name + "." + ext
	if err := os.WriteFile(filepath.Join(dir, filename), buf, 0o644); err != nil {
		return "", err
	}

	return "/" + subdir + "/" + filename, nil
}

// IsDataURL reports whether the payload looks like an image data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// Package extract pulls plain text out of uploaded document files.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the file extensions Text can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Text extracts the plain text of the file at path, dispatching on its
// extension. The extension check is case-insensitive.
func Text(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return PDF(path)
	case ".docx":
		return DOCX(path)
	default:
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
}

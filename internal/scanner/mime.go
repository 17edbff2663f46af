package scanner

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMimeType is used when an extension is unknown.
const DefaultMimeType = "text/plain"

// Common types resolved without consulting the host's mime.types, so the
// same file classifies identically on every machine.
var builtinTypes = map[string]string{
	".7z":   "application/x-7z-compressed",
	".avi":  "video/x-msvideo",
	".bmp":  "image/bmp",
	".c":    "text/x-c",
	".css":  "text/css",
	".csv":  "text/csv",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".exe":  "application/x-msdownload",
	".gif":  "image/gif",
	".go":   "text/x-go",
	".gz":   "application/gzip",
	".htm":  "text/html",
	".html": "text/html",
	".iso":  "application/x-iso9660-image",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "text/javascript",
	".json": "application/json",
	".md":   "text/markdown",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".rar":  "application/vnd.rar",
	".rs":   "text/x-rust",
	".svg":  "image/svg+xml",
	".tar":  "application/x-tar",
	".txt":  "text/plain",
	".wav":  "audio/wav",
	".webp": "image/webp",
	".xml":  "text/xml",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".zip":  "application/zip",
}

// MimeType guesses a content type from the path's extension. It never fails.
func MimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return DefaultMimeType
	}
	if t, ok := builtinTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		return DefaultMimeType
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

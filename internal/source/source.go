package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Loader converts raw file bytes into markup text for the scanner.
type Loader interface {
	Load(r io.Reader, filename string) (string, error)
}

// Options tunes the loaders returned by ForFile.
type Options struct {
	NormalizeHTML        bool // re-render HTML through a parser so tags are balanced
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":      true,
	".xaml":     true,
	".xhtml":    true,
	".rss":      true,
	".atom":     true,
	".svg":      true,
	".opml":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".docx":     true,
	".pdf":      true,
	".csv":      true,
	".txt":      true,
}

// ForFile returns the appropriate loader for a filename.
func ForFile(filename string, opts Options) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml", ".xaml", ".xhtml", ".rss", ".atom", ".svg", ".opml":
		return &RawLoader{}, nil
	case ".html", ".htm":
		if !opts.NormalizeHTML {
			return &RawLoader{}, nil
		}
		return &HTMLLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	case ".pdf":
		return &PDFLoader{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".txt":
		return &TextLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// RawLoader passes markup through untouched.
type RawLoader struct{}

func (l *RawLoader) Load(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// titleOf strips the extension from a filename.
func titleOf(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

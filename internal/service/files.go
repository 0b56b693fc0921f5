package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// ValidateFiles enforces the attach-time contract: at most
// MaxFilesPerTurn files, each within the size cap and of an accepted
// type. HTML attachments are reduced to their text content so markup
// never reaches the model context.
func ValidateFiles(files []domain.UploadedFile) ([]domain.UploadedFile, error) {
	if len(files) > config.MaxFilesPerTurn {
		return nil, fmt.Errorf("%w: %d files, limit %d", domain.ErrTooManyFiles, len(files), config.MaxFilesPerTurn)
	}

	out := make([]domain.UploadedFile, 0, len(files))
	for _, f := range files {
		if f.SizeBytes > config.MaxFileSize {
			return nil, fmt.Errorf("%w: %s (%d bytes)", domain.ErrFileTooLarge, f.Name, f.SizeBytes)
		}
		if !typeAllowed(f) {
			return nil, fmt.Errorf("%w: %s (%s)", domain.ErrFileTypeNotAllowed, f.Name, f.MimeType)
		}
		if isHTML(f) {
			text, err := extractHTMLText(f.Content)
			if err == nil {
				f.Content = text
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// FilesContext serializes attachments into the text that is stored on
// the message, in the same delimited form the composer emits.
func FilesContext(files []domain.UploadedFile) *string {
	if len(files) == 0 {
		return nil
	}
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("--- BEGIN FILE: ")
		b.WriteString(f.Name)
		b.WriteString(" ---\n")
		b.WriteString(f.Content)
		b.WriteString("\n--- END FILE: ")
		b.WriteString(f.Name)
		b.WriteString(" ---")
	}
	s := b.String()
	return &s
}

func typeAllowed(f domain.UploadedFile) bool {
	mime := strings.ToLower(strings.TrimSpace(f.MimeType))
	if mime != "" {
		// Declared types may carry parameters like "; charset=utf-8".
		if idx := strings.Index(mime, ";"); idx >= 0 {
			mime = strings.TrimSpace(mime[:idx])
		}
		for _, allowed := range config.AllowedMIMETypes {
			if mime == allowed {
				return true
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, allowed := range config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func isHTML(f domain.UploadedFile) bool {
	if strings.Contains(strings.ToLower(f.MimeType), "html") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	return ext == ".html" || ext == ".htm"
}

func extractHTMLText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	return text, nil
}

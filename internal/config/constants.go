package config

import "time"

const (
	// AI request timeout
	RequestTimeout = 60 * time.Second

	// History entries included in the model context
	HistoryLimit = 10

	// Update preview length (runes)
	PreviewMaxLen = 150

	// Conversation title derived from the first user message (runes)
	TitleMaxLen = 60

	// Attachment limits
	MaxFileSize     = 10 << 20 // 10 MiB
	MaxFilesPerTurn = 5

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Recent conversations shown in the sidebar
	RecentConversationsLimit = 20

	// Messages returned when a context is (re)opened
	ChatHistoryPageSize = 50

	// Rate limit (requests per minute per user)
	RateLimitPerMinute = 20

	// Database pool sizing
	DBMaxConns = 20
	DBMinConns = 5
)

// AllowedMIMETypes for chat attachments.
var AllowedMIMETypes = []string{
	"text/plain",
	"text/markdown",
	"text/csv",
	"text/html",
	"text/xml",
	"application/json",
	"application/xml",
	"application/pdf",
}

// AllowedExtensions accepted when the declared MIME type is missing.
var AllowedExtensions = []string{
	".txt", ".md", ".markdown", ".csv", ".json", ".html", ".htm", ".xml", ".pdf",
}

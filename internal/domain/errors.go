package domain

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrTurnInProgress       = errors.New("turn already in progress")
	ErrEmptyInput           = errors.New("empty input")
	ErrFileTooLarge         = errors.New("file too large")
	ErrFileTypeNotAllowed   = errors.New("file type not allowed")
	ErrTooManyFiles         = errors.New("too many files")
	ErrUpdateNotFound       = errors.New("update not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrGanttItemNotFound    = errors.New("gantt item not found")
)

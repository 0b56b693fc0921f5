package domain

// UploadedFile is a pending chat attachment. It lives only for the turn
// it was attached to; its text ends up serialized into the outgoing
// message's files context and the buffer is dropped after the send.
type UploadedFile struct {
	Name      string
	Content   string
	MimeType  string
	SizeBytes int64
}

package model

// Email is a message handed to the mail collaborator.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// StoredChange is a record event as persisted in the change stream.
type StoredChange struct {
	StreamID   string `json:"streamId"`
	Type       string `json:"type"`
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Data       Record `json:"data,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// BlobInfo describes a stored upload.
type BlobInfo struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

package domain

import (
	"net/url"
	"strings"
)

// RequestID is a short correlation identifier for one media request.
type RequestID string

// String returns the string representation of the RequestID.
func (id RequestID) String() string {
	return string(id)
}

// MediaRequest is one user-submitted URL to prepare and deliver. ChatID and
// MessageID tie the result back to the originating chat message.
type MediaRequest struct {
	ID        RequestID
	SourceURL string
	ChatID    int64
	MessageID int
}

// ParseRequest validates raw message text as a media URL. Anything that is
// not an absolute http(s) URL yields ErrNotURL; callers treat that as
// ordinary conversation and stay silent.
func ParseRequest(text string, chatID int64, messageID int) (*MediaRequest, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, ErrNotURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrNotURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrNotURL
	}
	if u.Host == "" {
		return nil, ErrNotURL
	}

	return &MediaRequest{
		SourceURL: raw,
		ChatID:    chatID,
		MessageID: messageID,
	}, nil
}

package services

import (
	"errors"
	"strings"
	"time"

	"huskytrack/advisor/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

const chatTitleLayout = "1/2/2006, 3:04:05 PM"

// MergeDocument returns p with doc recorded. A degree audit also updates the
// progress fields, and name/major when the audit carries them. Transcripts
// only add to the document list.
//
// A document whose storage key is already on the profile replaces that entry
// instead of being appended again.
func MergeDocument(p models.UserProfile, doc models.UploadedDocument) models.UserProfile {
	out := p
	out.Documents = upsertDocument(p.Documents, doc)

	if doc.ParsedData == nil || doc.ParsedData.DegreeAudit == nil {
		return out
	}

	audit := doc.ParsedData.DegreeAudit
	progress := audit.DegreeProgress

	out.Progress = progress.ProgressPercentage
	out.ExpectedGraduation = progress.ExpectedGraduation
	out.DegreeProgress = &progress
	if audit.Name != "" {
		out.Name = audit.Name
	}
	if audit.Major != "" {
		out.Major = audit.Major
	}

	return out
}

func upsertDocument(docs []models.UploadedDocument, doc models.UploadedDocument) []models.UploadedDocument {
	out := make([]models.UploadedDocument, len(docs), len(docs)+1)
	copy(out, docs)

	if doc.StorageKey != "" {
		for i := range out {
			if out[i].StorageKey == doc.StorageKey {
				out[i] = doc
				return out
			}
		}
	}

	return append(out, doc)
}

// StartChat appends a new empty session. Its id is one more than the largest
// existing id, or 0 for the first session.
func StartChat(p models.UserProfile, now time.Time) (models.UserProfile, models.ChatSession) {
	maxID := -1
	for _, c := range p.Chats {
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	chat := models.ChatSession{
		ID:       maxID + 1,
		Title:    now.Format(chatTitleLayout),
		Messages: []models.Message{},
	}

	out := p
	out.Chats = make([]models.ChatSession, len(p.Chats), len(p.Chats)+1)
	copy(out.Chats, p.Chats)
	out.Chats = append(out.Chats, chat)

	return out, chat
}

// NewMessage builds a message whose id is its creation time in milliseconds.
func NewMessage(text, sender string, now time.Time) models.Message {
	return models.Message{
		ID:        now.UnixMilli(),
		Text:      text,
		Sender:    sender,
		Timestamp: now.UTC(),
	}
}

// AppendMessage adds msg to the chat with chatID. Ids stay strictly
// increasing within a chat even when two messages share a millisecond.
func AppendMessage(p models.UserProfile, chatID int, msg models.Message) (models.UserProfile, models.Message, error) {
	idx := p.FindChat(chatID)
	if idx < 0 {
		return p, msg, ErrChatNotFound
	}

	chat := p.Chats[idx]
	if n := len(chat.Messages); n > 0 && msg.ID <= chat.Messages[n-1].ID {
		msg.ID = chat.Messages[n-1].ID + 1
	}

	messages := make([]models.Message, len(chat.Messages), len(chat.Messages)+1)
	copy(messages, chat.Messages)
	chat.Messages = append(messages, msg)

	out := p
	out.Chats = make([]models.ChatSession, len(p.Chats))
	copy(out.Chats, p.Chats)
	out.Chats[idx] = chat

	return out, msg, nil
}

// ApplyIdentity overlays identity-provider claims on a stored profile. Claims
// win; a missing name falls back to the email's local part, then "User".
func ApplyIdentity(p models.UserProfile, name, email string) models.UserProfile {
	out := p

	switch {
	case strings.TrimSpace(name) != "":
		out.Name = strings.TrimSpace(name)
	case email != "":
		out.Name = strings.SplitN(email, "@", 2)[0]
	case out.Name == "":
		out.Name = "User"
	}

	if email != "" {
		out.Email = email
	}

	return out
}

// SenderName is how a profile's messages are attributed in a chat.
func SenderName(p models.UserProfile) string {
	if p.Name != "" {
		return p.Name
	}
	return "User"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSession struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

type UserProfile struct {
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Major              string             `json:"major"`
	ExpectedGraduation string             `json:"expectedGraduation"`
	CurrentCourses     []string           `json:"currentCourses"`
	CompletedCourses   []string           `json:"completedCourses"`
	Progress           int                `json:"progress"`
	Documents          []UploadedDocument `json:"documents"`
	DegreeProgress     *DegreeProgress    `json:"degreeProgress,omitempty"`
	Chats              []ChatSession      `json:"chats"`
}

// FindChat returns the index of the chat with the given id, or -1.
func (p *UserProfile) FindChat(id int) int {
	for i := range p.Chats {
		if p.Chats[i].ID == id {
			return i
		}
	}
	return -1
}

// ProfileRecord stores a whole profile as one JSON blob keyed by the
// identity provider's user id. Version backs optimistic concurrency.
type ProfileRecord struct {
	UserID    string                          `gorm:"type:text;primaryKey" json:"user_id"`
	Profile   datatypes.JSONType[UserProfile] `json:"profile"`
	Version   int64                           `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `json:"updated_at"`
}

func (ProfileRecord) TableName() string {
	return "user_profiles"
}

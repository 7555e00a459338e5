package models

import "encoding/json"

type UploadResponse struct {
	Message      string          `json:"message"`
	Filename     string          `json:"filename"`
	OriginalName string          `json:"originalName"`
	FileSize     int64           `json:"fileSize"`
	Path         string          `json:"path"`
	S3URL        string          `json:"s3Url,omitempty"`
	S3Key        string          `json:"s3Key,omitempty"`
	Error        string          `json:"error,omitempty"`
	ParsedData   *ParsedDocument `json:"parsedData"`
	Profile      *UserProfile    `json:"profile,omitempty"`
	ProfileError string          `json:"profileError,omitempty"`
}

type PDFEntry struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

type PDFListResponse struct {
	PDFs []PDFEntry `json:"pdfs"`
}

type PDFInfoResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

type TranscriptResponse struct {
	Message        string          `json:"message"`
	Filename       string          `json:"filename"`
	TranscriptData *ParsedDocument `json:"transcriptData"`
}

type DebugPDFResponse struct {
	Message            string          `json:"message"`
	Filename           string          `json:"filename"`
	Text               string          `json:"text"`
	PageCount          int             `json:"pageCount"`
	MockTranscriptData *ParsedDocument `json:"mockTranscriptData"`
}

type IdentityResponse struct {
	Account string `json:"account"`
	UserID  string `json:"userId"`
	ARN     string `json:"arn,omitempty"`
	Region  string `json:"region"`
}

type PutProfileRequest struct {
	Profile *UserProfile `json:"profile"`
}

type SignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	Chat    *ChatSession `json:"chat"`
	Message Message      `json:"message"`
	Reply   *Message     `json:"reply,omitempty"`
}

// RecommendRequest is the body of a recommendation event. Profile fields are
// optional; when Profile is nil only the course lists are used.
type RecommendRequest struct {
	Prompt           string       `json:"prompt"`
	CurrentCourses   []string     `json:"currentCourses,omitempty"`
	CompletedCourses []string     `json:"completedCourses,omitempty"`
	Messages         []Message    `json:"messages,omitempty"`
	Profile          *UserProfile `json:"profile,omitempty"`
}

type RecommendResponse struct {
	Prompt        string `json:"prompt"`
	GeneratedText string `json:"generated_text"`
	ContextSource string `json:"context_source"`
	Timestamp     string `json:"timestamp"`
}

// FunctionEvent mirrors the cloud-function invocation envelope. Body is
// either a JSON object or a string holding one.
type FunctionEvent struct {
	Body json.RawMessage `json:"body"`
}

type FunctionResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

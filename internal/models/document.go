package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentTranscript  DocumentType = "transcript"
	DocumentDegreeAudit DocumentType = "degree-audit"
	DocumentOther       DocumentType = "other"
)

// ParseDocumentType maps a declared upload type ("Transcript", "Degree Audit",
// "dars", ...) onto a DocumentType.
func ParseDocumentType(s string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transcript":
		return DocumentTranscript
	case "degree audit", "degree-audit", "degree_audit", "dars":
		return DocumentDegreeAudit
	default:
		return DocumentOther
	}
}

type CourseGrade struct {
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Credits    string `json:"credits"`
	Grade      string `json:"grade"`
}

type TranscriptData struct {
	StudentID    string        `json:"studentId"`
	Name         string        `json:"name"`
	Major        string        `json:"major"`
	GPA          string        `json:"gpa"`
	TotalCredits string        `json:"totalCredits"`
	Courses      []CourseGrade `json:"courses"`
	RawText      string        `json:"rawText,omitempty"`
}

type DegreeProgress struct {
	TotalCreditsRequired int    `json:"totalCreditsRequired"`
	CreditsCompleted     int    `json:"creditsCompleted"`
	CreditsInProgress    int    `json:"creditsInProgress"`
	CreditsRemaining     int    `json:"creditsRemaining"`
	ProgressPercentage   int    `json:"progressPercentage"`
	ExpectedGraduation   string `json:"expectedGraduation"`
}

type RequirementCourse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Credits int    `json:"credits"`
}

type RequirementGroup struct {
	Required  int                 `json:"required"`
	Completed int                 `json:"completed"`
	Remaining int                 `json:"remaining"`
	Courses   []RequirementCourse `json:"courses"`
}

type DegreeAuditData struct {
	StudentID      string         `json:"studentId"`
	Name           string         `json:"name"`
	Major          string         `json:"major"`
	DegreeProgress DegreeProgress `json:"degreeProgress"`
	// Requirements is keyed by category ("coreRequirements", "electives", ...).
	Requirements map[string]RequirementGroup `json:"requirements"`
	RawText      string                      `json:"rawText,omitempty"`
}

// ParsedDocument is a tagged union: exactly one of Transcript or DegreeAudit
// is set, matching Type. On the wire the variant's fields are inlined next to
// a "documentType" discriminator.
type ParsedDocument struct {
	Type        DocumentType
	Transcript  *TranscriptData
	DegreeAudit *DegreeAuditData
}

func NewTranscriptDocument(t *TranscriptData) *ParsedDocument {
	return &ParsedDocument{Type: DocumentTranscript, Transcript: t}
}

func NewDegreeAuditDocument(d *DegreeAuditData) *ParsedDocument {
	return &ParsedDocument{Type: DocumentDegreeAudit, DegreeAudit: d}
}

func (p ParsedDocument) MarshalJSON() ([]byte, error) {
	switch {
	case p.Type == DocumentTranscript && p.Transcript != nil:
		return json.Marshal(struct {
			DocumentType DocumentType `json:"documentType"`
			*TranscriptData
		}{p.Type, p.Transcript})
	case p.Type == DocumentDegreeAudit && p.DegreeAudit != nil:
		return json.Marshal(struct {
			DocumentType DocumentType `json:"documentType"`
			*DegreeAuditData
		}{p.Type, p.DegreeAudit})
	default:
		return nil, fmt.Errorf("parsed document has no %q variant", p.Type)
	}
}

func (p *ParsedDocument) UnmarshalJSON(data []byte) error {
	var head struct {
		DocumentType   DocumentType    `json:"documentType"`
		DegreeProgress json.RawMessage `json:"degreeProgress"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	kind := head.DocumentType
	if kind == "" {
		// Untagged payloads are told apart by the degree-audit-only field.
		kind = DocumentTranscript
		if len(head.DegreeProgress) > 0 {
			kind = DocumentDegreeAudit
		}
	}

	switch kind {
	case DocumentTranscript:
		var t TranscriptData
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*p = ParsedDocument{Type: DocumentTranscript, Transcript: &t}
	case DocumentDegreeAudit:
		var d DegreeAuditData
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		*p = ParsedDocument{Type: DocumentDegreeAudit, DegreeAudit: &d}
	default:
		return fmt.Errorf("unknown documentType %q", kind)
	}
	return nil
}

// UploadedDocument is a profile's record of one uploaded PDF.
type UploadedDocument struct {
	Name       string          `json:"name"`
	URL        string          `json:"url"`
	StorageURL string          `json:"storageUrl,omitempty"`
	StorageKey string          `json:"storageKey,omitempty"`
	Type       DocumentType    `json:"type"`
	UploadDate time.Time       `json:"uploadDate"`
	ParsedData *ParsedDocument `json:"parsedData"`
}

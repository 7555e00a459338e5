package services

import (
	"math"
	"strings"

	"huskytrack/advisor/internal/models"
)

// DocumentParser routes an uploaded file to a transcript or degree-audit
// reader by its name. The readers return fixture records; no text is
// extracted from the PDF.
type DocumentParser interface {
	Classify(filename string) models.DocumentType
	// Parse returns nil for names that match neither branch.
	Parse(filename string) *models.ParsedDocument
	ParseTranscript(filePath string) *models.ParsedDocument
	ParseDegreeAudit(filePath string) *models.ParsedDocument
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

func (p *documentParser) Classify(filename string) models.DocumentType {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "transcript"):
		return models.DocumentTranscript
	case strings.Contains(name, "dars"), strings.Contains(name, "degree"):
		return models.DocumentDegreeAudit
	default:
		return models.DocumentOther
	}
}

func (p *documentParser) Parse(filename string) *models.ParsedDocument {
	switch p.Classify(filename) {
	case models.DocumentTranscript:
		return p.ParseTranscript(filename)
	case models.DocumentDegreeAudit:
		return p.ParseDegreeAudit(filename)
	default:
		return nil
	}
}

func (p *documentParser) ParseTranscript(_ string) *models.ParsedDocument {
	return models.NewTranscriptDocument(&models.TranscriptData{
		StudentID:    "12345678",
		Name:         "Jane Doe",
		Major:        "Computer Science",
		GPA:          "3.75",
		TotalCredits: "120",
		Courses: []models.CourseGrade{
			{CourseCode: "CSE 142", CourseName: "Computer Programming I", Credits: "5", Grade: "A"},
			{CourseCode: "CSE 143", CourseName: "Computer Programming II", Credits: "5", Grade: "A-"},
			{CourseCode: "CSE 311", CourseName: "Foundations of Computing I", Credits: "4", Grade: "B+"},
			{CourseCode: "CSE 312", CourseName: "Foundations of Computing II", Credits: "4", Grade: "A"},
			{CourseCode: "CSE 331", CourseName: "Software Design and Implementation", Credits: "4", Grade: "A-"},
			{CourseCode: "CSE 332", CourseName: "Data Structures and Parallelism", Credits: "4", Grade: "B+"},
			{CourseCode: "CSE 351", CourseName: "Hardware/Software Interface", Credits: "4", Grade: "A"},
			{CourseCode: "MATH 124", CourseName: "Calculus I", Credits: "5", Grade: "B"},
			{CourseCode: "MATH 125", CourseName: "Calculus II", Credits: "5", Grade: "B+"},
			{CourseCode: "PHYS 121", CourseName: "Mechanics", Credits: "5", Grade: "A-"},
		},
		RawText: "Fixture transcript data; PDF text is not extracted",
	})
}

func (p *documentParser) ParseDegreeAudit(_ string) *models.ParsedDocument {
	const (
		required   = 180
		completed  = 95
		inProgress = 12
	)

	return models.NewDegreeAuditDocument(&models.DegreeAuditData{
		StudentID: "12345678",
		Name:      "Jane Doe",
		Major:     "Computer Science",
		DegreeProgress: models.DegreeProgress{
			TotalCreditsRequired: required,
			CreditsCompleted:     completed,
			CreditsInProgress:    inProgress,
			CreditsRemaining:     required - completed - inProgress,
			ProgressPercentage:   ProgressPercentage(completed, required),
			ExpectedGraduation:   "Spring 2026",
		},
		Requirements: map[string]models.RequirementGroup{
			"coreRequirements": {
				Required: 60, Completed: 45, Remaining: 15,
				Courses: []models.RequirementCourse{
					{Code: "CSE 142", Name: "Computer Programming I", Status: "Completed", Credits: 5},
					{Code: "CSE 143", Name: "Computer Programming II", Status: "Completed", Credits: 5},
					{Code: "CSE 311", Name: "Foundations of Computing I", Status: "Completed", Credits: 4},
					{Code: "CSE 312", Name: "Foundations of Computing II", Status: "Completed", Credits: 4},
					{Code: "CSE 331", Name: "Software Design and Implementation", Status: "Completed", Credits: 4},
					{Code: "CSE 332", Name: "Data Structures and Parallelism", Status: "Completed", Credits: 4},
					{Code: "CSE 333", Name: "Systems Programming", Status: "In Progress", Credits: 4},
					{Code: "CSE 341", Name: "Algorithms", Status: "Not Started", Credits: 4},
					{Code: "CSE 344", Name: "Distributed Systems", Status: "Not Started", Credits: 4},
					{Code: "CSE 351", Name: "Hardware/Software Interface", Status: "Completed", Credits: 4},
				},
			},
			"mathRequirements": {
				Required: 20, Completed: 15, Remaining: 5,
				Courses: []models.RequirementCourse{
					{Code: "MATH 124", Name: "Calculus I", Status: "Completed", Credits: 5},
					{Code: "MATH 125", Name: "Calculus II", Status: "Completed", Credits: 5},
					{Code: "MATH 126", Name: "Calculus III", Status: "In Progress", Credits: 5},
					{Code: "MATH 308", Name: "Linear Algebra", Status: "Not Started", Credits: 5},
				},
			},
			"scienceRequirements": {
				Required: 15, Completed: 10, Remaining: 5,
				Courses: []models.RequirementCourse{
					{Code: "PHYS 121", Name: "Mechanics", Status: "Completed", Credits: 5},
					{Code: "PHYS 122", Name: "Electromagnetism", Status: "In Progress", Credits: 5},
					{Code: "CHEM 142", Name: "General Chemistry", Status: "Not Started", Credits: 5},
				},
			},
			"electives": {
				Required: 30, Completed: 15, Remaining: 15,
				Courses: []models.RequirementCourse{
					{Code: "CSE 401", Name: "Capstone Project", Status: "Not Started", Credits: 6},
					{Code: "CSE 402", Name: "Software Engineering", Status: "Not Started", Credits: 4},
					{Code: "CSE 403", Name: "Database Systems", Status: "Not Started", Credits: 4},
				},
			},
		},
		RawText: "Fixture degree audit data; PDF text is not extracted",
	})
}

// ProgressPercentage is completed/required as a rounded whole percent.
func ProgressPercentage(completed, required int) int {
	if required <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(required) * 100))
}

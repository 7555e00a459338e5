package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huskytrack/advisor/internal/models"
)

func TestClassify(t *testing.T) {
	parser := NewDocumentParser()

	tests := []struct {
		filename string
		want     models.DocumentType
	}{
		{"transcript.pdf", models.DocumentTranscript},
		{"My_TRANSCRIPT_2024.pdf", models.DocumentTranscript},
		{"DARS-report.pdf", models.DocumentDegreeAudit},
		{"degree_audit.pdf", models.DocumentDegreeAudit},
		{"resume.pdf", models.DocumentOther},
		{"", models.DocumentOther},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.Classify(tt.filename))
		})
	}
}

func TestParseBranches(t *testing.T) {
	parser := NewDocumentParser()

	transcript := parser.Parse("Transcript.pdf")
	require.NotNil(t, transcript)
	assert.Equal(t, models.DocumentTranscript, transcript.Type)
	require.NotNil(t, transcript.Transcript)
	assert.Nil(t, transcript.DegreeAudit)
	assert.NotEmpty(t, transcript.Transcript.Courses)
	assert.Equal(t, "CSE 142", transcript.Transcript.Courses[0].CourseCode)

	audit := parser.Parse("dars.pdf")
	require.NotNil(t, audit)
	assert.Equal(t, models.DocumentDegreeAudit, audit.Type)
	require.NotNil(t, audit.DegreeAudit)
	progress := audit.DegreeAudit.DegreeProgress
	assert.Equal(t, 180, progress.TotalCreditsRequired)
	assert.Equal(t, 95, progress.CreditsCompleted)
	assert.Equal(t, 73, progress.CreditsRemaining)
	assert.Equal(t, 53, progress.ProgressPercentage)

	assert.Nil(t, parser.Parse("notes.pdf"))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 53, ProgressPercentage(95, 180))
	assert.Equal(t, 50, ProgressPercentage(1, 2))
	assert.Equal(t, 67, ProgressPercentage(2, 3))
	assert.Equal(t, 100, ProgressPercentage(180, 180))
	assert.Equal(t, 0, ProgressPercentage(10, 0))
}

func TestDegreeAuditRequirementsAreKeyedByCategory(t *testing.T) {
	audit := NewDocumentParser().Parse("dars.pdf")
	require.NotNil(t, audit)

	raw, err := json.Marshal(audit)
	require.NoError(t, err)

	var wire struct {
		Requirements map[string]struct {
			Required int `json:"required"`
			Courses  []struct {
				Code string `json:"code"`
			} `json:"courses"`
		} `json:"requirements"`
	}
	require.NoError(t, json.Unmarshal(raw, &wire))

	require.Contains(t, wire.Requirements, "coreRequirements")
	assert.Equal(t, 60, wire.Requirements["coreRequirements"].Required)
	assert.Equal(t, "CSE 142", wire.Requirements["coreRequirements"].Courses[0].Code)
	assert.Contains(t, wire.Requirements, "mathRequirements")
	assert.Contains(t, wire.Requirements, "scienceRequirements")
	assert.Contains(t, wire.Requirements, "electives")
}

package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"huskytrack/advisor/internal/models"
)

func courseRows(n int) []models.CourseRecord {
	rows := make([]models.CourseRecord, n)
	for i := range rows {
		rows[i] = models.CourseRecord{
			"course_code": fmt.Sprintf("CSE %d", 300+i),
			"course_name": fmt.Sprintf("Course %d", i),
			"credits":     "4",
			"description": "desc",
		}
	}
	return rows
}

func TestFormatCourses(t *testing.T) {
	got := FormatCourses([]models.CourseRecord{
		{"course_code": "CSE 333", "course_name": "Systems Programming", "credits": "4", "description": "C and C++"},
		{"course_number": "CSE 341", "name": "Programming Languages"},
	})

	assert.Equal(t, "CSE 333: Systems Programming (4 credits) - C and C++\nCSE 341: Programming Languages", got)
	assert.Equal(t, "No course data available.", FormatCourses(nil))
}

func TestFormatPrerequisites(t *testing.T) {
	prereqs := []models.CourseRecord{
		{"course_code": "CSE 333", "prerequisite_code": "CSE 351", "prerequisite_name": "Hardware/Software Interface"},
		{"course_code": "CSE 999", "prerequisite_code": "CSE 143"},
	}

	all := FormatPrerequisites(prereqs, nil)
	assert.Equal(t, "CSE 333 requires: CSE 351 (Hardware/Software Interface)\nCSE 999 requires: CSE 143", all)

	filtered := FormatPrerequisites(prereqs, map[string]bool{"CSE 333": true})
	assert.Equal(t, "CSE 333 requires: CSE 351 (Hardware/Software Interface)", filtered)
}

func TestBuildRecommendationPromptLimitsCourses(t *testing.T) {
	pb := NewPromptBuilder(15, 10)

	prompt := pb.BuildRecommendationPrompt(PromptInput{
		Courses: courseRows(20),
		Prompt:  "What should I take next?",
	})

	assert.Contains(t, prompt, "CSE 314: Course 14")
	assert.NotContains(t, prompt, "CSE 315: Course 15")
	assert.True(t, strings.HasSuffix(prompt, "User Question: What should I take next?"))
}

func TestBuildRecommendationPromptProfileAndHistory(t *testing.T) {
	pb := NewPromptBuilder(15, 2)

	profile := models.UserProfile{
		Major:              "Computer Science",
		ExpectedGraduation: "Spring 2026",
		CurrentCourses:     []string{"CSE 332"},
		CompletedCourses:   []string{"CSE 143", "CSE 311"},
		DegreeProgress: &models.DegreeProgress{
			TotalCreditsRequired: 180,
			CreditsCompleted:     95,
			CreditsInProgress:    12,
			ProgressPercentage:   53,
		},
	}

	prompt := pb.BuildRecommendationPrompt(PromptInput{
		Profile: profile,
		History: []models.Message{
			{Sender: "Jane", Text: "first"},
			{Sender: "HuskyBot", Text: "second"},
			{Sender: "Jane", Text: "third"},
		},
		Prompt: "next?",
	})

	assert.Contains(t, prompt, "- Major: Computer Science")
	assert.Contains(t, prompt, "- Expected Graduation: Spring 2026")
	assert.Contains(t, prompt, "- Degree Progress: 53% (95 of 180 credits completed, 12 in progress)")
	assert.Contains(t, prompt, "- Current Courses: CSE 332")
	assert.Contains(t, prompt, "- Completed Courses: CSE 143, CSE 311")
	assert.NotContains(t, prompt, "Jane: first")
	assert.Contains(t, prompt, "HuskyBot: second")
	assert.Contains(t, prompt, "Jane: third")
}

func TestBuildRecommendationPromptExplicitCoursesWin(t *testing.T) {
	pb := NewPromptBuilder(15, 10)

	prompt := pb.BuildRecommendationPrompt(PromptInput{
		Profile:          models.UserProfile{CompletedCourses: []string{"CSE 142"}},
		CompletedCourses: []string{"CSE 143"},
		Prompt:           "hi",
	})

	assert.Contains(t, prompt, "- Completed Courses: CSE 143")
	assert.Contains(t, prompt, "- Current Courses: None")
	assert.Contains(t, prompt, "- Major: Not provided")
}

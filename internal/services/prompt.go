package services

import (
	"fmt"
	"strings"

	"huskytrack/advisor/internal/models"
)

const advisorPreamble = `You are HuskyBot, an academic advisor assistant for the University of Washington's Computer Science program.
Your goal is to provide personalized course recommendations based on the student's profile and course history.`

const advisorInstructions = `When answering:
1. Review completed courses and verify prerequisites before recommending anything.
2. Consider the student's current course load, academic level and graduation timeline.
3. Take into account interests or career goals mentioned in the conversation.
4. Recommend 2-3 specific courses, each with the course code and name, credits, whether prerequisites are met, and why it fits.
5. End with a brief note about registration or next steps.

Respond in a conversational yet professional tone. Avoid technical jargon unless necessary.`

// PromptInput is everything the advisor prompt is built from. The profile is
// passed in explicitly; nothing is read from request scope.
type PromptInput struct {
	Profile          models.UserProfile
	CurrentCourses   []string
	CompletedCourses []string
	Courses          []models.CourseRecord
	Prerequisites    []models.CourseRecord
	History          []models.Message
	Prompt           string
}

type PromptBuilder struct {
	courseLimit  int
	historyLimit int
}

func NewPromptBuilder(courseLimit, historyLimit int) *PromptBuilder {
	if courseLimit <= 0 {
		courseLimit = 15
	}
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &PromptBuilder{
		courseLimit:  courseLimit,
		historyLimit: historyLimit,
	}
}

func (pb *PromptBuilder) CourseLimit() int {
	return pb.courseLimit
}

// BuildRecommendationPrompt renders the advisor prompt. At most courseLimit
// courses and the last historyLimit conversation turns are included.
func (pb *PromptBuilder) BuildRecommendationPrompt(in PromptInput) string {
	current := in.CurrentCourses
	if len(current) == 0 {
		current = in.Profile.CurrentCourses
	}
	completed := in.CompletedCourses
	if len(completed) == 0 {
		completed = in.Profile.CompletedCourses
	}

	var b strings.Builder

	b.WriteString(advisorPreamble)
	b.WriteString("\n\nSTUDENT PROFILE:\n")
	fmt.Fprintf(&b, "- Major: %s\n", orNotProvided(in.Profile.Major))
	fmt.Fprintf(&b, "- Expected Graduation: %s\n", orNotProvided(in.Profile.ExpectedGraduation))
	if in.Profile.DegreeProgress != nil {
		dp := in.Profile.DegreeProgress
		fmt.Fprintf(&b, "- Degree Progress: %d%% (%d of %d credits completed, %d in progress)\n",
			dp.ProgressPercentage, dp.CreditsCompleted, dp.TotalCreditsRequired, dp.CreditsInProgress)
	}
	fmt.Fprintf(&b, "- Current Courses: %s\n", orNone(current))
	fmt.Fprintf(&b, "- Completed Courses: %s\n", orNone(completed))

	b.WriteString("\nAVAILABLE COURSES:\n")
	b.WriteString(FormatCourses(limitCourses(in.Courses, pb.courseLimit)))

	if len(in.Prerequisites) > 0 {
		b.WriteString("\n\nPREREQUISITES:\n")
		b.WriteString(FormatPrerequisites(in.Prerequisites, relevantCodes(limitCourses(in.Courses, pb.courseLimit))))
	}

	history := in.History
	if len(history) > pb.historyLimit {
		history = history[len(history)-pb.historyLimit:]
	}
	if len(history) > 0 {
		b.WriteString("\n\nRECENT CONVERSATION:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
		}
	}

	b.WriteString("\n")
	b.WriteString(advisorInstructions)
	fmt.Fprintf(&b, "\n\nUser Question: %s", strings.TrimSpace(in.Prompt))

	return b.String()
}

// FormatCourses renders one "code: name (N credits) - description" line per course.
func FormatCourses(courses []models.CourseRecord) string {
	if len(courses) == 0 {
		return "No course data available."
	}

	lines := make([]string, 0, len(courses))
	for _, c := range courses {
		line := fmt.Sprintf("%s: %s", courseCode(c), c.Get("course_name", "name"))
		if credits := c.Get("credits"); credits != "" {
			line += fmt.Sprintf(" (%s credits)", credits)
		}
		if desc := c.Get("description"); desc != "" {
			line += " - " + desc
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatPrerequisites renders "X requires: Y (name)" lines, restricted to
// the given course codes when the set is non-empty.
func FormatPrerequisites(prereqs []models.CourseRecord, codes map[string]bool) string {
	var lines []string
	for _, p := range prereqs {
		code := courseCode(p)
		if len(codes) > 0 && !codes[code] {
			continue
		}
		line := fmt.Sprintf("%s requires: %s", code, p.Get("prerequisite_code"))
		if name := p.Get("prerequisite_name"); name != "" {
			line += fmt.Sprintf(" (%s)", name)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "None listed."
	}
	return strings.Join(lines, "\n")
}

func courseCode(c models.CourseRecord) string {
	return c.Get("course_code", "course_number", "code")
}

func limitCourses(courses []models.CourseRecord, limit int) []models.CourseRecord {
	if len(courses) > limit {
		return courses[:limit]
	}
	return courses
}

func relevantCodes(courses []models.CourseRecord) map[string]bool {
	codes := make(map[string]bool, len(courses))
	for _, c := range courses {
		if code := courseCode(c); code != "" {
			codes[code] = true
		}
	}
	return codes
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

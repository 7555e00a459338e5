package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"huskytrack/advisor/internal/models"
)

// corePrerequisites lists core CSE courses and what must be done first.
var corePrerequisites = map[string][]string{
	"CSE 333": {"CSE 143", "CSE 311"},
	"CSE 341": {"CSE 143", "CSE 311"},
	"CSE 344": {"CSE 143", "CSE 311"},
	"CSE 351": {"CSE 143", "CSE 311"},
	"CSE 401": {"CSE 331", "CSE 332"},
	"CSE 402": {"CSE 331", "CSE 332"},
}

// FallbackAdvisor answers without a hosted model, from the student's
// transcript and a fixed table of core prerequisites.
type FallbackAdvisor struct{}

func NewFallbackAdvisor() *FallbackAdvisor {
	return &FallbackAdvisor{}
}

func (a *FallbackAdvisor) Reply(in RecommendInput) string {
	message := strings.ToLower(in.Prompt)
	transcript := latestTranscript(in.Profile)

	if transcript == nil {
		return generalReply(message)
	}
	return transcriptReply(message, transcript, completedCodes(in, transcript))
}

// EligibleCoreCourses returns core courses not yet taken whose prerequisites
// are all in completed, in course-code order.
func EligibleCoreCourses(completed map[string]bool) []string {
	var eligible []string
	for course, prereqs := range corePrerequisites {
		if completed[course] {
			continue
		}
		met := true
		for _, p := range prereqs {
			if !completed[p] {
				met = false
				break
			}
		}
		if met {
			eligible = append(eligible, course)
		}
	}
	sort.Strings(eligible)
	return eligible
}

func latestTranscript(p models.UserProfile) *models.TranscriptData {
	for i := len(p.Documents) - 1; i >= 0; i-- {
		parsed := p.Documents[i].ParsedData
		if parsed != nil && parsed.Transcript != nil {
			return parsed.Transcript
		}
	}
	return nil
}

func completedCodes(in RecommendInput, t *models.TranscriptData) map[string]bool {
	codes := make(map[string]bool)
	for _, c := range t.Courses {
		codes[c.CourseCode] = true
	}
	for _, c := range in.CompletedCourses {
		codes[c] = true
	}
	for _, c := range in.Profile.CompletedCourses {
		codes[c] = true
	}
	return codes
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func transcriptReply(message string, t *models.TranscriptData, completed map[string]bool) string {
	major := t.Major
	if major == "" {
		major = "Computer Science"
	}
	gpa := t.GPA
	if gpa == "" {
		gpa = "N/A"
	}

	var cse, math int
	for _, c := range t.Courses {
		switch {
		case strings.HasPrefix(c.CourseCode, "CSE"):
			cse++
		case strings.HasPrefix(c.CourseCode, "MATH"):
			math++
		}
	}

	var b strings.Builder
	switch {
	case containsAny(message, "course", "recommend", "next"):
		recommendations := EligibleCoreCourses(completed)
		if len(recommendations) > 5 {
			recommendations = recommendations[:5]
		}
		if len(recommendations) > 0 {
			b.WriteString("Based on your transcript analysis:\n\n")
			fmt.Fprintf(&b, "**Your Progress:**\n- Major: %s\n- GPA: %s\n- Total Credits: %s\n- Completed CSE Courses: %d\n\n", major, gpa, t.TotalCredits, cse)
			b.WriteString("**Recommended Next Courses:**\n")
			for _, r := range recommendations {
				fmt.Fprintf(&b, "• %s\n", r)
			}
			b.WriteString("\nThese courses build on prerequisites you have completed and are core to the Computer Science degree.\n\n")
			b.WriteString("Would you like more specific advice about any of these courses?")
		} else {
			fmt.Fprintf(&b, "Based on your transcript, you've completed %d CSE courses.\n\n", cse)
			fmt.Fprintf(&b, "**Your Progress:**\n- Major: %s\n- GPA: %s\n- Total Credits: %s\n\n", major, gpa, t.TotalCredits)
			b.WriteString("**Next Steps:**\nYou may need to complete more prerequisites before taking advanced courses. Consider:\n")
			b.WriteString("• CSE 311 (Foundations of Computing I) - if not completed\n")
			b.WriteString("• CSE 312 (Foundations of Computing II) - if not completed\n")
			b.WriteString("• MATH 124/125 (Calculus I/II) - if not completed\n\n")
			b.WriteString("Would you like me to analyze your specific course history in more detail?")
		}

	case containsAny(message, "gpa", "grade"):
		fmt.Fprintf(&b, "Your current GPA is %s with %s total credits completed.\n\n", gpa, t.TotalCredits)
		b.WriteString("**Grade Analysis:**\n")
		recent := t.Courses
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		for _, c := range recent {
			fmt.Fprintf(&b, "• %s: %s\n", c.CourseCode, c.Grade)
		}
		fmt.Fprintf(&b, "\n**Academic Standing:**\nYour GPA indicates %s academic performance.\n\n", standing(gpa))
		b.WriteString("Would you like specific advice about improving your grades or course selection?")

	default:
		fmt.Fprintf(&b, "I can see your transcript data! You're a %s major with a %s GPA and %s credits completed.\n\n", major, gpa, t.TotalCredits)
		fmt.Fprintf(&b, "**Completed Courses:** %d total\n**CSE Courses:** %d\n**Math Courses:** %d\n\n", len(t.Courses), cse, math)
		b.WriteString("I can help you with course recommendations, degree planning and prerequisite checking.\n\n")
		b.WriteString("What would you like to know about your academic progress?")
	}

	return b.String()
}

func standing(gpa string) string {
	v, err := strconv.ParseFloat(gpa, 64)
	switch {
	case err != nil:
		return "unknown"
	case v >= 3.5:
		return "strong"
	case v >= 3.0:
		return "good"
	default:
		return "needs improvement"
	}
}

func generalReply(message string) string {
	switch {
	case containsAny(message, "course", "recommend"):
		return "I'd be happy to help with course recommendations!\n\n" +
			"To provide the most accurate advice, please upload your transcript PDF first. " +
			"Once you upload your transcript, I can give you personalized course recommendations based on your academic history."
	case containsAny(message, "transcript", "upload"):
		return "To get started with personalized course recommendations:\n\n" +
			"1. **Upload your transcript PDF** using the upload feature\n" +
			"2. **Ask me questions** about your courses, GPA, or degree plan\n" +
			"3. **Get personalized advice** based on your academic history\n\n" +
			"Upload your transcript and let's get started!"
	default:
		return "Hello! I'm your HuskyTrack academic advisor. I can help you with course recommendations, " +
			"degree planning and prerequisite checking.\n\n" +
			"To get started, upload your transcript PDF and ask me any questions about your academic journey!"
	}
}

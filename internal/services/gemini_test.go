package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFirstContentText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "first"}, {Text: "second"}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "other"}}}},
		},
	}

	text, err := firstContentText(resp)
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestFirstContentTextMissing(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		"empty text":    {Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: ""}}}}}},
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := firstContentText(resp)
			assert.ErrorIs(t, err, ErrNoResponseGenerated)
		})
	}
}

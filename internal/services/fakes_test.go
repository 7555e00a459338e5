package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"huskytrack/advisor/internal/models"
)

type putCall struct {
	Key         string
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

type fakeObjectStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]string
	puts    []putCall
	gets    int
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{bucket: "test-bucket", objects: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts = append(f.puts, putCall{Key: key, Body: body, ContentType: contentType, Metadata: metadata})
	f.objects[key] = string(body)
	return fmt.Sprintf("https://%s.s3.us-east-1.amazonaws.com/%s", f.bucket, key), nil
}

func (f *fakeObjectStore) GetText(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	text, ok := f.objects[key]
	if !ok {
		return "", errors.New("NoSuchKey")
	}
	return text, nil
}

func (f *fakeObjectStore) Locator(key string) string {
	return fmt.Sprintf("s3://%s/%s", f.bucket, key)
}

type fakeGenerator struct {
	text    string
	err     error
	calls   int
	prompts []string
	configs []GenerationConfig
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string, cfg GenerationConfig) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type upsert struct {
	Code  string
	Chunk int
	Text  string
}

type fakeCourseIndex struct {
	matches   []CourseMatch
	searchErr error
	upserts   []upsert
	deleted   []string
}

func (f *fakeCourseIndex) InitCollection(context.Context) error { return nil }

func (f *fakeCourseIndex) UpsertCourse(_ context.Context, code string, chunk int, text string, _ []float32) error {
	f.upserts = append(f.upserts, upsert{Code: code, Chunk: chunk, Text: text})
	return nil
}

func (f *fakeCourseIndex) SearchCourses(_ context.Context, _ []float32, limit int) ([]CourseMatch, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.matches) > limit {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

func (f *fakeCourseIndex) DeleteCourse(_ context.Context, code string) error {
	f.deleted = append(f.deleted, code)
	return nil
}

type fakeCatalog struct {
	courses      *models.CourseTable
	prereqs      *models.CourseTable
	coursesErr   error
	prereqErr    error
	coursesCalls int
	prereqCalls  int
}

func (f *fakeCatalog) LoadCourses(context.Context) (*models.CourseTable, error) {
	f.coursesCalls++
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return f.courses, nil
}

func (f *fakeCatalog) LoadPrerequisites(context.Context) (*models.CourseTable, error) {
	f.prereqCalls++
	if f.prereqErr != nil {
		return nil, f.prereqErr
	}
	return f.prereqs, nil
}

func (f *fakeCatalog) Source() string {
	return "s3://test-bucket/courses.csv"
}

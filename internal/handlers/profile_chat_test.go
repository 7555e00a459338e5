package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"huskytrack/advisor/internal/config"
	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/repositories"
	"huskytrack/advisor/internal/services"
)

type chatRecommender struct {
	reply  string
	err    error
	inputs []services.RecommendInput
}

func (r *chatRecommender) Recommend(_ context.Context, in services.RecommendInput) (*services.Recommendation, error) {
	r.inputs = append(r.inputs, in)
	if r.err != nil {
		return nil, r.err
	}
	return &services.Recommendation{Prompt: in.Prompt, Text: r.reply, Timestamp: time.Now()}, nil
}

func (r *chatRecommender) HandleEvent(context.Context, models.FunctionEvent) models.FunctionResponse {
	return models.FunctionResponse{StatusCode: http.StatusNotImplemented}
}

type stubExtractor struct {
	content *services.PDFContent
	err     error
}

func (s *stubExtractor) Extract(string) (*services.PDFContent, error) {
	return s.content, s.err
}

func newTestProfileService(t *testing.T) services.ProfileService {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	writer := services.NewProfileWriter(2, zap.NewNop())
	writer.Start(context.Background())
	t.Cleanup(writer.Stop)

	return services.NewProfileService(
		repositories.NewProfileRepository(db),
		writer,
		services.NewSignUpPolicy("uw.edu"),
		zap.NewNop(),
	)
}

func newProfileApp(t *testing.T, rec services.Recommender) *fiber.App {
	t.Helper()

	profiles := newTestProfileService(t)
	profileHandler := NewProfileHandler(profiles, zap.NewNop())
	chatHandler := NewChatHandler(profiles, rec, zap.NewNop())

	app := fiber.New()
	app.Get("/api/users/:id", profileHandler.HandleGet)
	app.Put("/api/users/:id", profileHandler.HandlePut)
	app.Post("/api/users/:id/signin", profileHandler.HandleSignIn)
	app.Post("/api/users/:id/chats", chatHandler.HandleStart)
	app.Post("/api/users/:id/chats/:chatId/messages", chatHandler.HandleSend)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func signIn(t *testing.T, app *fiber.App, userID string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/users/"+userID+"/signin", `{"name":"Harry Husky","email":"husky@uw.edu"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileGetMissing(t *testing.T) {
	app := newProfileApp(t, &chatRecommender{})

	resp := doJSON(t, app, http.MethodGet, "/api/users/nobody", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "Profile not found", out["error"])
}

func TestProfileSignInGetAndPut(t *testing.T) {
	app := newProfileApp(t, &chatRecommender{})

	resp := doJSON(t, app, http.MethodPost, "/api/users/sub-1/signin", `{"name":"Harry Husky","email":"husky@uw.edu"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.UserProfile
	decode(t, resp, &created)
	assert.Equal(t, "Harry Husky", created.Name)
	assert.Equal(t, "husky@uw.edu", created.Email)

	resp = doJSON(t, app, http.MethodGet, "/api/users/sub-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.UserProfile
	decode(t, resp, &fetched)
	assert.Equal(t, "Harry Husky", fetched.Name)

	resp = doJSON(t, app, http.MethodPut, "/api/users/sub-1", `{"profile":{"name":"Harry Husky","email":"husky@uw.edu","major":"Computer Science"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var replaced models.UserProfile
	decode(t, resp, &replaced)
	assert.Equal(t, "Computer Science", replaced.Major)

	resp = doJSON(t, app, http.MethodGet, "/api/users/sub-1", "")
	decode(t, resp, &fetched)
	assert.Equal(t, "Computer Science", fetched.Major)

	resp = doJSON(t, app, http.MethodPut, "/api/users/sub-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileSignInRejections(t *testing.T) {
	app := newProfileApp(t, &chatRecommender{})

	resp := doJSON(t, app, http.MethodPost, "/api/users/sub-2/signin", `{"name":"Eve","email":"eve@gmail.com"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "Please use your uw.edu email to sign up.", out["error"])

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-2/signin", `{"name":"Eve"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, "email is required", out["error"])

	resp = doJSON(t, app, http.MethodGet, "/api/users/sub-2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestChatStartAndSend(t *testing.T) {
	rec := &chatRecommender{reply: "Consider CSE 333 next."}
	app := newProfileApp(t, rec)
	signIn(t, app, "sub-3")

	resp := doJSON(t, app, http.MethodPost, "/api/users/sub-3/chats", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var chat models.ChatSession
	decode(t, resp, &chat)
	assert.Equal(t, 0, chat.ID)
	assert.Empty(t, chat.Messages)

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-3/chats/0/messages", `{"text":"What should I take next?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var sent models.SendMessageResponse
	decode(t, resp, &sent)

	assert.Equal(t, "What should I take next?", sent.Message.Text)
	assert.Equal(t, "Harry Husky", sent.Message.Sender)
	require.NotNil(t, sent.Reply)
	assert.Equal(t, AdvisorSender, sent.Reply.Sender)
	assert.Equal(t, "Consider CSE 333 next.", sent.Reply.Text)
	require.NotNil(t, sent.Chat)
	require.Len(t, sent.Chat.Messages, 2)
	assert.Greater(t, sent.Chat.Messages[1].ID, sent.Chat.Messages[0].ID)

	require.Len(t, rec.inputs, 1)
	assert.Equal(t, "What should I take next?", rec.inputs[0].Prompt)
	assert.Empty(t, rec.inputs[0].History)
	assert.Equal(t, "Harry Husky", rec.inputs[0].Profile.Name)

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-3/chats/0/messages", `{"text":"And after that?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.Len(t, rec.inputs, 2)
	history := rec.inputs[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "What should I take next?", history[0].Text)
	assert.Equal(t, AdvisorSender, history[1].Sender)
}

func TestChatSendRejections(t *testing.T) {
	rec := &chatRecommender{reply: "ok"}
	app := newProfileApp(t, rec)
	signIn(t, app, "sub-4")

	resp := doJSON(t, app, http.MethodPost, "/api/users/sub-4/chats/abc/messages", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "Invalid chat id", out["error"])

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-4/chats/0/messages", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, services.ErrMissingPrompt.Error(), out["error"])

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-4/chats/9/messages", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/users/nobody/chats", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Empty(t, rec.inputs)
}

func TestChatSendKeepsQuestionWhenAdvisorFails(t *testing.T) {
	rec := &chatRecommender{err: errors.New("model unavailable")}
	app := newProfileApp(t, rec)
	signIn(t, app, "sub-5")

	resp := doJSON(t, app, http.MethodPost, "/api/users/sub-5/chats", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/users/sub-5/chats/0/messages", `{"text":"Is CSE 351 hard?"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/users/sub-5", "")
	var profile models.UserProfile
	decode(t, resp, &profile)
	require.Len(t, profile.Chats, 1)
	require.Len(t, profile.Chats[0].Messages, 1)
	assert.Equal(t, "Is CSE 351 hard?", profile.Chats[0].Messages[0].Text)
}

func TestDebugPDF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-transcript.pdf"), []byte("%PDF"), 0644))

	extractor := &stubExtractor{content: &services.PDFContent{Text: "CSE 142 4.0", PageCount: 2}}
	h := NewPDFHandler(services.NewStorageService(dir), services.NewDocumentParser(), extractor, zap.NewNop())
	app := fiber.New()
	app.Get("/debug-pdf/:filename", h.HandleDebug)

	get := func() *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/debug-pdf/1-transcript.pdf", nil))
		require.NoError(t, err)
		return resp
	}

	resp := get()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	decode(t, resp, &out)
	assert.Equal(t, "PDF text for 1-transcript.pdf", out["message"])
	assert.Equal(t, "CSE 142 4.0", out["text"])
	assert.EqualValues(t, 2, out["pageCount"])
	mock, ok := out["mockTranscriptData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "transcript", mock["documentType"])

	extractor.content = &services.PDFContent{PageCount: 1}
	extractor.err = services.ErrNoTextLayer
	resp = get()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, noTextLayerNotice, out["text"])
	assert.EqualValues(t, 1, out["pageCount"])

	extractor.content, extractor.err = nil, errors.New("corrupt xref")
	resp = get()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, "Failed to get PDF text", out["error"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/debug-pdf/missing.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

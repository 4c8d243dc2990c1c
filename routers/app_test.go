package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"coursehub/config"
	authControllers "coursehub/controllers/auth"
	courseControllers "coursehub/controllers/course"
	"coursehub/database"
	"coursehub/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[to] = token
	return nil
}

func (m *captureMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type testApp struct {
	app         *fiber.App
	credentials *services.CredentialService
	mailer      *captureMailer
	uploadDir   string
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    map[string]any    `json:"meta"`
	Errors  map[string]string `json:"errors"`
}

type courseJSON struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	Language      string   `json:"language"`
	TotalDuration int      `json:"total_duration"`
	ThumbnailURL  *string  `json:"thumbnail_url"`
	CreatedAt     string   `json:"created_at"`
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{JWTSecret: "router-test-secret", JWTExpiresIn: time.Hour, SaltRound: 4}
	credentials := services.NewCredentialService(cfg)
	mailer := &captureMailer{tokens: make(map[string]string)}
	accounts := services.NewAccountService(database.NewUserStore(db), credentials, mailer)
	uploadDir := t.TempDir()

	app := NewApp(Dependencies{
		Courses:   courseControllers.NewCourseController(database.NewCourseStore(db), uploadDir),
		Auth:      authControllers.NewAuthController(accounts),
		Verifier:  credentials,
		Ping:      func() error { return database.Ping(db) },
		UploadDir: uploadDir,
		Quiet:     true,
	})

	return &testApp{app: app, credentials: credentials, mailer: mailer, uploadDir: uploadDir}
}

func (ta *testApp) token(t *testing.T) string {
	t.Helper()
	tok, err := ta.credentials.IssueToken(1)
	require.NoError(t, err)
	return tok
}

func (ta *testApp) do(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return ta.send(t, req)
}

func (ta *testApp) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (ta *testApp) createCourse(t *testing.T, title string, price float64) courseJSON {
	t.Helper()

	status, env := ta.do(t, fiber.MethodPost, "/course", coursePayload(title, price), ta.token(t))
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	var c courseJSON
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func coursePayload(title string, price float64) map[string]any {
	return map[string]any{
		"title":         title,
		"description":   "Learn " + title,
		"price":         price,
		"averageRating": 4.5,
		"language":      "English",
		"totalDuration": 120,
	}
}

func TestCreateCourse_ReturnsMappedFields(t *testing.T) {
	ta := newTestApp(t)

	payload := coursePayload("Go in Practice", 29.5)
	payload["discountPrice"] = 19.5
	payload["reviewCount"] = 12

	status, env := ta.do(t, fiber.MethodPost, "/course", payload, ta.token(t))
	require.Equal(t, fiber.StatusCreated, status)
	assert.True(t, env.Status)

	var c courseJSON
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.NotZero(t, c.ID)
	assert.NotEmpty(t, c.CreatedAt)
	assert.Equal(t, "Go in Practice", c.Title)
	assert.Equal(t, "Learn Go in Practice", c.Description)
	assert.Equal(t, 29.5, c.Price)
	require.NotNil(t, c.DiscountPrice)
	assert.Equal(t, 19.5, *c.DiscountPrice)
	assert.Equal(t, 4.5, c.AverageRating)
	assert.Equal(t, 12, c.ReviewCount)
	assert.Equal(t, "English", c.Language)
	assert.Equal(t, 120, c.TotalDuration)
	assert.Nil(t, c.ThumbnailURL)
}

func TestCreateCourse_NegativePriceIsRejected(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodPost, "/course", coursePayload("Broken", -5), ta.token(t))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Status)
	assert.Contains(t, env.Errors, "price")
}

func TestCreateCourse_ReportsEveryMissingField(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodPost, "/course", map[string]any{}, ta.token(t))
	assert.Equal(t, fiber.StatusBadRequest, status)
	for _, field := range []string{"title", "description", "price", "averageRating", "language", "totalDuration"} {
		assert.Contains(t, env.Errors, field)
	}
}

func TestAuthGate(t *testing.T) {
	ta := newTestApp(t)
	payload := coursePayload("Gated", 10)

	valid := ta.token(t)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + valid},
		{"empty token", "Bearer "},
		{"tampered token", "Bearer " + tampered},
		{"garbage token", "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(payload)
			req := httptest.NewRequest(fiber.MethodPost, "/course", bytes.NewReader(raw))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			status, env := ta.send(t, req)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.False(t, env.Status)
		})
	}

	status, _ := ta.do(t, fiber.MethodPatch, "/course/1", map[string]any{"price": 1}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestListCourses_FilterSortPaginate(t *testing.T) {
	ta := newTestApp(t)
	for i := 0; i < 12; i++ {
		ta.createCourse(t, fmt.Sprintf("Course %02d", i), float64(8+i))
	}
	// prices 8..19; the range [10,20] matches 10..19

	status, env := ta.do(t, fiber.MethodGet, "/course?price_gte=10&price_lte=20&sort=price:desc&page=2&limit=5", nil, "")
	require.Equal(t, fiber.StatusOK, status)

	var courses []courseJSON
	require.NoError(t, json.Unmarshal(env.Data, &courses))

	prices := make([]float64, 0, len(courses))
	for _, c := range courses {
		prices = append(prices, c.Price)
	}
	assert.Equal(t, []float64{14, 13, 12, 11, 10}, prices)

	assert.EqualValues(t, 10, env.Meta["total"])
	assert.EqualValues(t, 2, env.Meta["page"])
	assert.EqualValues(t, 5, env.Meta["limit"])
	assert.EqualValues(t, 2, env.Meta["totalPages"])
}

func TestListCourses_PageBeyondEnd(t *testing.T) {
	ta := newTestApp(t)
	ta.createCourse(t, "First", 10)
	ta.createCourse(t, "Second", 20)

	for _, page := range []string{"2", "9223372036854775807", "99999999999999999999"} {
		status, env := ta.do(t, fiber.MethodGet, "/course?limit=2&page="+page, nil, "")
		require.Equal(t, fiber.StatusOK, status, page)
		assert.JSONEq(t, "[]", string(env.Data), page)
		assert.EqualValues(t, 2, env.Meta["total"], page)
		assert.EqualValues(t, 1, env.Meta["totalPages"], page)
	}
}

func TestListCourses_InvalidFilterValue(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodGet, "/course?price_gte=cheap&created_at_lt=someday", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "price_gte")
	assert.Contains(t, env.Errors, "created_at_lt")
}

func TestListCourses_EmptyCatalog(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodGet, "/course", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(env.Data))
	assert.EqualValues(t, 0, env.Meta["total"])
	assert.EqualValues(t, 1, env.Meta["page"])
	assert.EqualValues(t, 10, env.Meta["limit"])
}

func TestGetUpdateDeleteCourse(t *testing.T) {
	ta := newTestApp(t)
	created := ta.createCourse(t, "Lifecycle", 10)
	path := fmt.Sprintf("/course/%d", created.ID)

	status, env := ta.do(t, fiber.MethodGet, path, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var got courseJSON
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Lifecycle", got.Title)

	status, env = ta.do(t, fiber.MethodPatch, path, map[string]any{"price": 25, "language": "French"}, ta.token(t))
	require.Equal(t, fiber.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 25.0, got.Price)
	assert.Equal(t, "French", got.Language)
	assert.Equal(t, "Lifecycle", got.Title)

	status, env = ta.do(t, fiber.MethodPatch, path, map[string]any{"averageRating": 7}, ta.token(t))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "averageRating")

	status, _ = ta.do(t, fiber.MethodDelete, path, nil, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = ta.do(t, fiber.MethodGet, path, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = ta.do(t, fiber.MethodDelete, path, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = ta.do(t, fiber.MethodPatch, path, map[string]any{"price": 1}, ta.token(t))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetCourse_BadID(t *testing.T) {
	ta := newTestApp(t)

	for _, id := range []string{"abc", "0", "-3"} {
		status, env := ta.do(t, fiber.MethodGet, "/course/"+id, nil, "")
		assert.Equal(t, fiber.StatusBadRequest, status, id)
		assert.Contains(t, env.Errors, "id")
	}
}

func uploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadThumbnail(t *testing.T) {
	ta := newTestApp(t)
	created := ta.createCourse(t, "Pictures", 10)
	path := fmt.Sprintf("/course/%d/upload", created.ID)
	image := []byte("\x89PNG\r\n\x1a\nfake")

	status, env := ta.send(t, uploadRequest(t, path, "thumbnail", "cover.PNG", image))
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var got courseJSON
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.NotNil(t, got.ThumbnailURL)
	assert.True(t, strings.HasPrefix(*got.ThumbnailURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(*got.ThumbnailURL, ".png"))

	stored, err := os.ReadFile(filepath.Join(ta.uploadDir, strings.TrimPrefix(*got.ThumbnailURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, image, stored)

	resp, err := ta.app.Test(httptest.NewRequest(fiber.MethodGet, *got.ThumbnailURL, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUploadThumbnail_Rejections(t *testing.T) {
	ta := newTestApp(t)
	created := ta.createCourse(t, "Pictures", 10)
	path := fmt.Sprintf("/course/%d/upload", created.ID)

	status, env := ta.send(t, uploadRequest(t, path, "", "", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "thumbnail")

	status, env = ta.send(t, uploadRequest(t, path, "thumbnail", "notes.txt", []byte("hi")))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "thumbnail")

	status, _ = ta.send(t, uploadRequest(t, "/course/9999/upload", "thumbnail", "cover.png", []byte("x")))
	assert.Equal(t, fiber.StatusNotFound, status)

	// an unknown course is reported before the missing file
	status, _ = ta.send(t, uploadRequest(t, "/course/9999/upload", "", "", nil))
	assert.Equal(t, fiber.StatusNotFound, status)

	entries, err := os.ReadDir(ta.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	ta := newTestApp(t)
	body := map[string]any{
		"fullName": "Grace Hopper",
		"username": "grace",
		"email":    "Grace@Example.com",
		"password": "cobol-rules",
	}

	status, env := ta.do(t, fiber.MethodPost, "/register", body, "")
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "verification")
	assert.Contains(t, string(env.Data), `"is_verified":false`)

	status, _ = ta.do(t, fiber.MethodPost, "/register", body, "")
	assert.Equal(t, fiber.StatusConflict, status)

	login := map[string]any{"email": "grace@example.com", "password": "cobol-rules"}
	status, _ = ta.do(t, fiber.MethodPost, "/login", login, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	token := ta.mailer.token("grace@example.com")
	require.NotEmpty(t, token)

	status, _ = ta.do(t, fiber.MethodGet, "/verify-email?token="+token, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = ta.do(t, fiber.MethodGet, "/verify-email?token="+token, nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = ta.do(t, fiber.MethodGet, "/verify-email", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = ta.do(t, fiber.MethodPost, "/login", map[string]any{"email": "grace@example.com", "password": "wrong-one"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env = ta.do(t, fiber.MethodPost, "/login", login, "")
	require.Equal(t, fiber.StatusOK, status)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)

	// the issued token passes the gate
	status, _ = ta.do(t, fiber.MethodPost, "/course", coursePayload("After Login", 5), data.Token)
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodPost, "/register", map[string]any{"email": "nope"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")
	assert.Contains(t, env.Errors, "fullName")
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, fiber.MethodGet, "/health", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Status)

	down := NewApp(Dependencies{
		Ping:      func() error { return errors.New("connection refused") },
		UploadDir: t.TempDir(),
		Quiet:     true,
	})
	resp, err := down.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

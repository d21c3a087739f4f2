package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/storage"
)

type fakeGenerator struct {
	questions []quiz.GeneratedQuestion
	err       error
	content   string
}

func (f *fakeGenerator) Generate(_ context.Context, content string, opts genai.Options) ([]quiz.GeneratedQuestion, error) {
	f.content = content
	if f.err != nil {
		return nil, f.err
	}
	if opts.Count > 0 && len(f.questions) > opts.Count {
		return f.questions[:opts.Count], nil
	}
	return f.questions, nil
}

const testPublicURL = "https://quiz.example"

func newRouter(store quiz.Store, gen genai.Generator) http.Handler {
	r := chi.NewRouter()
	r.Post("/generate-quiz", api.GenerateQuizHandler(gen))
	r.Post("/parse-document", api.ParseDocumentHandler(nil, 10<<20))
	r.Post("/quiz", api.CreateQuizHandler(store, testPublicURL))
	r.Get("/quiz", api.GetQuizHandler(store, testPublicURL))
	r.Put("/quiz", api.UpdateQuizHandler(store, testPublicURL))
	r.Delete("/quiz", api.DeleteQuizHandler(store))
	r.Get("/share/{shareID}", api.GetSharedQuizHandler(store))
	r.Post("/quiz/{quizID}/submit", api.SubmitResponseHandler(store))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	store := quiz.NewInMemoryStore()
	h := newRouter(store, &fakeGenerator{})

	// Create.
	rec := doJSON(t, h, "POST", "/quiz", map[string]any{
		"title":       "Geography",
		"description": "Capitals",
		"questions": []map[string]any{
			{"type": "multiple_choice", "question": "Capital of France?", "options": []string{"Paris", "Lyon", "Nice", "Lille"}, "correct": "Paris"},
			{"type": "true_false", "question": "Berlin is in Germany.", "correct": "true"},
		},
	})
	if rec.Code != 200 {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[quiz.Quiz](t, rec)
	if created.ShareID == "" || len(created.Questions) != 2 {
		t.Fatalf("unexpected quiz: %+v", created)
	}
	if want := testPublicURL + "/share/" + created.ShareID; created.ShareURL != want {
		t.Fatalf("share url: want %q, got %q", want, created.ShareURL)
	}

	// Authoring fetch includes answers.
	rec = doJSON(t, h, "GET", "/quiz?id="+created.ID, nil)
	if rec.Code != 200 {
		t.Fatalf("get: %d", rec.Code)
	}
	if got := decode[quiz.Quiz](t, rec); got.Questions[0].Correct != "Paris" {
		t.Fatalf("authoring view lost correct answers: %+v", got.Questions[0])
	}

	// Public share view omits them.
	rec = doJSON(t, h, "GET", "/share/"+created.ShareID, nil)
	if rec.Code != 200 {
		t.Fatalf("share: %d", rec.Code)
	}
	pub := decode[quiz.Quiz](t, rec)
	for _, q := range pub.Questions {
		if q.Correct != "" {
			t.Fatalf("share view leaked correct answer: %+v", q)
		}
	}

	// Take the quiz.
	rec = doJSON(t, h, "POST", "/quiz/"+created.ID+"/submit", map[string]any{
		"answers": map[string]string{
			created.Questions[0].ID: "Paris",
			created.Questions[1].ID: "TRUE",
		},
	})
	if rec.Code != 200 {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	res := decode[quiz.Result](t, rec)
	if res.Score != 100 || res.CorrectAnswers != 2 || res.TotalQuestions != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Response.ID == "" {
		t.Fatalf("response must be persisted and returned")
	}

	// Replace questions.
	rec = doJSON(t, h, "PUT", "/quiz", map[string]any{
		"id":        created.ID,
		"title":     "Geography v2",
		"questions": []map[string]any{{"type": "short_answer", "question": "Capital of Spain?", "correct": "Madrid"}},
	})
	if rec.Code != 200 {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[quiz.Quiz](t, rec); len(got.Questions) != 1 {
		t.Fatalf("update must replace questions: %+v", got.Questions)
	}

	// Delete.
	rec = doJSON(t, h, "DELETE", "/quiz?id="+created.ID, nil)
	if rec.Code != 200 {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/quiz?id="+created.ID, nil)
	if rec.Code != 404 {
		t.Fatalf("deleted quiz must 404, got %d", rec.Code)
	}
}

func TestQuizValidationErrors(t *testing.T) {
	store := quiz.NewInMemoryStore()
	h := newRouter(store, &fakeGenerator{})

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"questions": []map[string]any{}}},
		{"missing questions", map[string]any{"title": "T"}},
	}
	for _, c := range cases {
		if rec := doJSON(t, h, "POST", "/quiz", c.body); rec.Code != 400 {
			t.Errorf("%s: want 400, got %d", c.name, rec.Code)
		}
	}

	if rec := doJSON(t, h, "GET", "/quiz", nil); rec.Code != 400 {
		t.Errorf("get without id: want 400, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/quiz?id=unknown", nil); rec.Code != 404 {
		t.Errorf("unknown id: want 404, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/share/unknown1", nil); rec.Code != 404 {
		t.Errorf("unknown share id: want 404, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "POST", "/quiz/unknown/submit", map[string]any{}); rec.Code != 400 {
		t.Errorf("missing answers: want 400, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "POST", "/quiz/unknown/submit", map[string]any{"answers": map[string]string{}}); rec.Code != 404 {
		t.Errorf("unknown quiz submit: want 404, got %d", rec.Code)
	}
}

func TestGenerateQuizHandler(t *testing.T) {
	gen := &fakeGenerator{questions: []quiz.GeneratedQuestion{
		{Type: "true_false", Question: "Q1", Options: []string{}, Correct: "true"},
	}}
	h := newRouter(quiz.NewInMemoryStore(), gen)

	rec := doJSON(t, h, "POST", "/generate-quiz", map[string]any{
		"content": "The Nile is the longest river in Africa.",
		"options": map[string]any{"count": 1, "difficulty": "easy", "types": []string{"true_false"}},
	})
	if rec.Code != 200 {
		t.Fatalf("generate: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[struct {
		Questions []quiz.GeneratedQuestion `json:"questions"`
	}](t, rec)
	if len(out.Questions) != 1 || out.Questions[0].Question != "Q1" {
		t.Fatalf("unexpected questions: %+v", out.Questions)
	}
	if !strings.Contains(gen.content, "Nile") {
		t.Fatalf("content not passed to generator")
	}

	// Boundary validation happens before the generation call.
	if rec := doJSON(t, h, "POST", "/generate-quiz", map[string]any{"content": "   ", "options": map[string]any{}}); rec.Code != 400 {
		t.Errorf("blank content: want 400, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "POST", "/generate-quiz", map[string]any{"content": "text"}); rec.Code != 400 {
		t.Errorf("missing options: want 400, got %d", rec.Code)
	}

	gen.err = &genai.UpstreamError{Err: errors.New("timeout")}
	if rec := doJSON(t, h, "POST", "/generate-quiz", map[string]any{
		"content": "text", "options": map[string]any{"count": 1},
	}); rec.Code != 500 {
		t.Errorf("upstream failure: want 500, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestParseDocumentHandler(t *testing.T) {
	h := newRouter(quiz.NewInMemoryStore(), &fakeGenerator{})

	prose := strings.Repeat("Glaciers carved the fjords of Norway over many thousands of years. ", 5)
	body, ct := multipartUpload(t, "file", "geo.pdf", "application/pdf", []byte("1 0 obj stream "+prose+" endstream endobj"))
	req := httptest.NewRequest("POST", "/parse-document", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("parse: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]string](t, rec)
	if !strings.Contains(out["content"], "fjords") {
		t.Fatalf("extracted content lost prose: %q", out["content"])
	}

	// Not a PDF.
	body, ct = multipartUpload(t, "file", "notes.txt", "text/plain", []byte("hello"))
	req = httptest.NewRequest("POST", "/parse-document", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Fatalf("non-pdf upload: want 400, got %d", rec.Code)
	}

	// Unreadable PDF asks for manual paste.
	body, ct = multipartUpload(t, "file", "scan.pdf", "application/pdf", []byte("stream \x01\x02 endstream"))
	req = httptest.NewRequest("POST", "/parse-document", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 || !strings.Contains(rec.Body.String(), "paste") {
		t.Fatalf("unreadable pdf: want 400 with paste hint, got %d %s", rec.Code, rec.Body.String())
	}

	// Missing file field.
	req = httptest.NewRequest("POST", "/parse-document", strings.NewReader(""))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Fatalf("missing file: want 400, got %d", rec.Code)
	}
}

func TestParseDocumentSizeLimit(t *testing.T) {
	h := api.ParseDocumentHandler(nil, 1<<10)

	body, ct := multipartUpload(t, "file", "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 4<<10))
	req := httptest.NewRequest("POST", "/parse-document", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 || !strings.Contains(rec.Body.String(), "1.0 kB") {
		t.Fatalf("oversized upload: want 400 naming the 1.0 kB limit, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadArchiveRoundTrip(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	r := chi.NewRouter()
	r.Post("/parse-document", api.ParseDocumentHandler(bs, 10<<20))
	r.Get("/uploads/{name}", api.UploadFetchHandler(bs))

	prose := strings.Repeat("Volcanic eruptions reshaped the island landscape over several centuries. ", 5)
	raw := []byte("1 0 obj stream " + prose + " endstream endobj")
	body, ct := multipartUpload(t, "file", "geo.pdf", "application/pdf", raw)
	req := httptest.NewRequest("POST", "/parse-document", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("parse: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]string](t, rec)
	if out["upload"] == "" {
		t.Fatalf("archive name missing from response: %v", out)
	}

	req = httptest.NewRequest("GET", "/uploads/"+out["upload"], nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 200 || !bytes.Equal(rec.Body.Bytes(), raw) {
		t.Fatalf("archived upload must round-trip, got %d (%d bytes)", rec.Code, rec.Body.Len())
	}

	req = httptest.NewRequest("GET", "/uploads/missing.pdf", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("unknown archive name: want 404, got %d", rec.Code)
	}
}

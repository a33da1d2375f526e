package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"docvision/internal/analysis"
	"docvision/internal/cache"
	"docvision/internal/describe"
	"docvision/internal/imagefetch"
	"docvision/internal/ollama"
	"docvision/internal/translate"
	"docvision/pkg/types"
)

const describeBody = `{"image_url":"http://img.test/a.png","objects":["chat","table"]}`

func describeDeps(d *mockDescriber, f mockFetcher) Deps {
	return Deps{Models: &mockModels{active: "llava:7b"}, Describer: d, Images: f}
}

func TestDescribe_OK(t *testing.T) {
	d := &mockDescriber{res: describe.Result{Description: "Un chat sur une table.", ModelUsed: "llava:7b"}}
	h := NewMux(describeDeps(d, mockFetcher{img: imagefetch.Image{Data: []byte("png"), MIME: "image/png"}}))
	w := do(h, http.MethodPost, "/describe", describeBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[types.DescribeResponse](t, w)
	if body.Status != "success" || body.Message != describe.MsgGenerated || body.Description != "Un chat sur une table." || body.ModelUsed != "llava:7b" {
		t.Fatalf("unexpected: %+v", body)
	}
	if string(d.image) != "png" {
		t.Fatalf("fetched bytes not forwarded: %q", d.image)
	}
}

func TestDescribe_CachedMessage(t *testing.T) {
	d := &mockDescriber{res: describe.Result{Description: "x", ModelUsed: "llava:7b", Cached: true}}
	h := NewMux(describeDeps(d, mockFetcher{}))
	body := decode[types.DescribeResponse](t, do(h, http.MethodPost, "/describe", describeBody))
	if body.Message != describe.MsgFromCache {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestDescribe_Validation(t *testing.T) {
	h := NewMux(describeDeps(&mockDescriber{}, mockFetcher{}))
	cases := map[string]string{
		`{"image_url":"","objects":["chat"]}`:                   "URL de l'image",
		`{"image_url":"http://img.test/a.png","objects":[]}`:    "Liste d'objets",
		`{"image_url":"http://img.test/a.png","objects":[" "]}`: "Liste d'objets",
	}
	for in, want := range cases {
		w := do(h, http.MethodPost, "/describe", in)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), want) {
			t.Fatalf("%s: status=%d body=%s", in, w.Code, w.Body.String())
		}
	}
}

func TestDescribe_NoActiveModel400(t *testing.T) {
	h := NewMux(Deps{Models: &mockModels{}, Describer: &mockDescriber{}, Images: mockFetcher{}})
	w := do(h, http.MethodPost, "/describe", describeBody)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Aucun modèle actif défini") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDescribe_FetchFailure400(t *testing.T) {
	h := NewMux(describeDeps(&mockDescriber{}, mockFetcher{err: &imagefetch.StatusError{StatusCode: 404}}))
	w := do(h, http.MethodPost, "/describe", describeBody)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Échec du téléchargement de l'image") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDescribe_ErrorMapping(t *testing.T) {
	transport := &ollama.TransportError{Op: "/api/generate", Err: errors.New("refused")}
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not an image", fmt.Errorf("%w: %w", cache.ErrComputationFailed, imagefetch.ErrNotImage), http.StatusBadRequest},
		{"no active model", describe.ErrNoActiveModel, http.StatusBadRequest},
		{"generation failed", fmt.Errorf("%w: %w", cache.ErrComputationFailed, transport), http.StatusInternalServerError},
		{"empty response", fmt.Errorf("%w: %w", cache.ErrComputationFailed, describe.ErrEmptyResponse), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMux(describeDeps(&mockDescriber{err: tc.err}, mockFetcher{}))
			w := do(h, http.MethodPost, "/describe", describeBody)
			if w.Code != tc.want {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestDescribe_LogsWithZerolog(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer func() { zlog = nil }()
	d := &mockDescriber{res: describe.Result{Description: "x", ModelUsed: "m"}}
	h := NewMux(describeDeps(d, mockFetcher{}))
	if w := do(h, http.MethodPost, "/describe?log=debug", describeBody); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with debug logging, got %d", w.Code)
	}
}

func TestAnalyze(t *testing.T) {
	a := mockAnalyzer{res: map[string]analysis.Occurrence{"voiture": {Text: 2, Image: 1}}}
	h := NewMux(Deps{Models: &mockModels{}, Analyzer: a, Images: mockFetcher{}})
	w := do(h, http.MethodPost, "/analyze", `{"image_url":"http://img.test/a.png","text":"deux voitures"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"voiture":{"occurence_text":2,"occurence_image":1}`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAnalyze_Failures(t *testing.T) {
	h := NewMux(Deps{Models: &mockModels{}, Analyzer: mockAnalyzer{}, Images: mockFetcher{err: imagefetch.ErrInvalidURL}})
	if w := do(h, http.MethodPost, "/analyze", `{"image_url":"ftp://x","text":"t"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	h = NewMux(Deps{Models: &mockModels{}, Analyzer: mockAnalyzer{err: errors.New("detector down")}, Images: mockFetcher{}})
	w := do(h, http.MethodPost, "/analyze", `{"image_url":"http://img.test/a.png","text":"t"}`)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "Erreur lors de l'analyse") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	w := do(NewMux(Deps{Models: &mockModels{}}), http.MethodPost, "/analyze", `{"image_url":"http://x","text":"t"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestSummary(t *testing.T) {
	h := NewMux(Deps{Models: &mockModels{}, Describer: &mockDescriber{summary: "Résumé."}})
	w := do(h, http.MethodPost, "/resumer", `{"text":"long texte"}`)
	if body := decode[types.SummaryResponse](t, w); w.Code != http.StatusOK || body.Summary != "Résumé." {
		t.Fatalf("status=%d body=%+v", w.Code, body)
	}
	if w := do(h, http.MethodPost, "/resumer", `{"text":"  "}`); w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), describe.MsgNoText) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	h = NewMux(Deps{Models: &mockModels{}, Describer: &mockDescriber{sumErr: errors.New("boom")}})
	if w := do(h, http.MethodPost, "/resumer", `{"text":"x"}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestTranslate(t *testing.T) {
	h := NewMux(Deps{Models: &mockModels{}, Translator: mockTranslator{out: "Bonjour."}})
	w := do(h, http.MethodPost, "/translate", `{"text":"Hello."}`)
	if body := decode[types.TranslateResponse](t, w); w.Code != http.StatusOK || body.TranslatedText != "Bonjour." {
		t.Fatalf("status=%d body=%+v", w.Code, body)
	}
	if w := do(h, http.MethodPost, "/translate", `{"text":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	h = NewMux(Deps{Models: &mockModels{}, Translator: mockTranslator{err: translate.ErrEmptyText}})
	if w := do(h, http.MethodPost, "/translate", `{"text":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	h = NewMux(Deps{Models: &mockModels{}, Translator: mockTranslator{err: errors.New("down")}})
	if w := do(h, http.MethodPost, "/translate", `{"text":"x"}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

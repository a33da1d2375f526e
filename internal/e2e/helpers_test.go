package e2e

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"docvision/internal/cache"
	"docvision/internal/describe"
	"docvision/internal/httpapi"
	"docvision/internal/imagefetch"
	"docvision/internal/manager"
	"docvision/internal/ollama"
)

// fakeOllama serves the subset of the model endpoint API docvision uses.
// Pulls add the model to the catalog under "<name>:latest" when untagged.
type fakeOllama struct {
	mu     sync.Mutex
	models []string
	// hold, when non-nil, blocks each pull after its first progress line
	// until closed or the client goes away.
	hold chan struct{}

	generates atomic.Int32
	chats     atomic.Int32
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		_, _ = io.WriteString(w, "Ollama is running")
	case "/api/tags":
		f.mu.Lock()
		var out struct {
			Models []ollama.Model `json:"models"`
		}
		for _, m := range f.models {
			out.Models = append(out.Models, ollama.Model{Name: m})
		}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(out)
	case "/api/pull":
		var req struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.pull(w, r, req.Name)
	case "/api/generate":
		f.generates.Add(1)
		var req ollama.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ollama.GenerateResponse{Model: req.Model, Response: " Un chat dort sur une table. ", Done: true})
	case "/api/chat":
		f.chats.Add(1)
		var req ollama.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ollama.ChatResponse{Model: req.Model, Message: ollama.ChatMessage{Role: "assistant", Content: "Résumé court."}, Done: true})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeOllama) pull(w http.ResponseWriter, r *http.Request, name string) {
	fl, _ := w.(http.Flusher)
	line := func(s string) {
		_, _ = io.WriteString(w, s+"\n")
		if fl != nil {
			fl.Flush()
		}
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	line(`{"status":"pulling manifest"}`)
	line(`{"status":"downloading","digest":"sha256:abc","total":200,"completed":50}`)
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-r.Context().Done():
			return
		}
	}
	line(`{"status":"downloading","digest":"sha256:abc","total":200,"completed":200}`)
	if !strings.Contains(name, ":") {
		name += ":latest"
	}
	f.mu.Lock()
	f.models = append(f.models, name)
	f.mu.Unlock()
	line(`{"status":"success"}`)
}

type stack struct {
	api     *httptest.Server
	images  *httptest.Server
	ollama  *fakeOllama
	manager *manager.Manager
	events  *manager.MemoryPublisher
	cache   *cache.Cache
}

// newStack wires the real services behind httpapi against a fake model
// endpoint and a static image server.
func newStack(t *testing.T, fake *fakeOllama) *stack {
	t.Helper()
	log := zerolog.New(io.Discard)
	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)
	images := httptest.NewServer(http.HandlerFunc(serveImages(t)))
	t.Cleanup(images.Close)

	backend := ollama.New(ollama.Config{BaseURL: upstream.URL, RequestTimeout: 5 * time.Second, Logger: log})
	events := manager.NewBoundedMemoryPublisher(64)
	mgr := manager.NewWithConfig(manager.Config{Backend: backend, Logger: log, Publisher: events})
	t.Cleanup(func() { _ = mgr.Close() })
	c := cache.New(cache.WithLogger(log))
	describer := describe.New(describe.Config{
		Generator:    backend,
		Models:       mgr,
		Cache:        c,
		SummaryModel: "mistral",
		Logger:       log,
	})
	mux := httpapi.NewMux(httpapi.Deps{
		Models:    mgr,
		Describer: describer,
		Images:    imagefetch.New(imagefetch.Config{Logger: log}),
		Backend:   backend,
		Events:    events,
	})
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return &stack{api: api, images: images, ollama: fake, manager: mgr, events: events, cache: c}
}

// serveImages answers /cat.png with a small PNG and /notes.txt with text.
func serveImages(t *testing.T) func(http.ResponseWriter, *http.Request) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	pngBytes := buf.Bytes()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/notes.txt":
			_, _ = io.WriteString(w, "just some text, not an image")
		default:
			http.NotFound(w, r)
		}
	}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpPostJSON(t *testing.T, url string, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func decodeInto(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
}

// waitStatus polls /models/download-status until it reports want.
func waitStatus(t *testing.T, base, want string) []byte {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, b := httpGet(t, base+"/models/download-status")
		var st struct {
			Status string `json:"status"`
		}
		decodeInto(t, b, &st)
		if st.Status == want {
			return b
		}
		if time.Now().After(deadline) {
			t.Fatalf("download status never reached %q, last: %s", want, string(b))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeBackend tags its input with the target language and fails on "fail".
type fakeBackend struct {
	calls []string
}

func (f *fakeBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.calls = append(f.calls, text)
	if strings.Contains(strings.ToLower(text), "fail") {
		return "", errors.New("quota exceeded")
	}
	if text == "dog" {
		return "Chien", nil
	}
	return "[" + target + "]" + text, nil
}

func TestSplitSegments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{name: "single", in: "a\nb\n", max: 10, want: []string{"a\nb\n"}},
		{name: "split on lines", in: "aaaa\nbbbb\ncc", max: 7, want: []string{"aaaa\n", "bbbb\ncc"}},
		{name: "long line alone", in: "x\nyyyyyyyy\nz", max: 4, want: []string{"x\n", "yyyyyyyy\n", "z"}},
		{name: "counts runes", in: "éé\nàà\n", max: 6, want: []string{"éé\nàà\n"}},
		{name: "empty", in: "", max: 5, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSegments(tc.in, tc.max)
			if strings.Join(got, "|") != strings.Join(tc.want, "|") || len(got) != len(tc.want) {
				t.Fatalf("SplitSegments(%q,%d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestCapitalizeAfterPeriod(t *testing.T) {
	cases := map[string]string{
		"HELLO world. this IS it.  ok": "Hello world. This is it.  Ok",
		"  été. à bientôt":             "  Été. À bientôt",
		"v1.2 est sorti":               "V1.2 est sorti",
		"":                             "",
	}
	for in, want := range cases {
		if got := CapitalizeAfterPeriod(in); got != want {
			t.Fatalf("CapitalizeAfterPeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslate_FallsBackPerSegment(t *testing.T) {
	fb := &fakeBackend{}
	tr := New(Config{Backend: fb, MaxSegment: 8})
	got, err := tr.Translate(context.Background(), "hello.\nplease fail\nbye")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(fb.calls) != 3 {
		t.Fatalf("expected 3 segments, got %q", fb.calls)
	}
	want := "[fr]hello.\nPlease fail\n[fr]bye"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTranslate_Empty(t *testing.T) {
	tr := New(Config{Backend: &fakeBackend{}})
	if _, err := tr.Translate(context.Background(), "  \n "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestWord(t *testing.T) {
	tr := New(Config{Backend: &fakeBackend{}})
	if got := tr.Word(context.Background(), "dog"); got != "chien" {
		t.Fatalf("Word(dog) = %q", got)
	}
	if got := tr.Word(context.Background(), "FAIL"); got != "fail" {
		t.Fatalf("expected lowercased fallback, got %q", got)
	}
}

func TestHTTPBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req translateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Q {
		case "cat":
			if req.Source != "en" || req.Target != "fr" || req.Format != "text" {
				t.Errorf("unexpected payload: %+v", req)
			}
			io.WriteString(w, `{"translatedText":"chat"}`)
		case "null":
			io.WriteString(w, `{"translatedText":null}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"unsupported"}`)
		}
	}))
	defer ts.Close()
	b := NewHTTPBackend(HTTPConfig{BaseURL: ts.URL})
	if got, err := b.Translate(context.Background(), "cat", "en", "fr"); err != nil || got != "chat" {
		t.Fatalf("Translate(cat) = %q, %v", got, err)
	}
	if _, err := b.Translate(context.Background(), "null", "en", "fr"); !errors.Is(err, ErrNoTranslation) {
		t.Fatalf("expected ErrNoTranslation, got %v", err)
	}
	if _, err := b.Translate(context.Background(), "x", "en", "fr"); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected status error, got %v", err)
	}
}

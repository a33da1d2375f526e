package imagefetch

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return b.Bytes()
}

func serve(t *testing.T, status int, body []byte) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts.URL + "/img"
}

func TestFetch_OK(t *testing.T) {
	body := pngBytes(t, 4, 4)
	f := New(Config{})
	img, err := f.Fetch(testCtx(t), serve(t, http.StatusOK, body))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if img.MIME != "image/png" || !bytes.Equal(img.Data, body) {
		t.Fatalf("unexpected image: mime=%s len=%d", img.MIME, len(img.Data))
	}
}

func TestFetch_Rejections(t *testing.T) {
	f := New(Config{MaxBytes: 64})
	if _, err := f.Fetch(testCtx(t), "ftp://example.com/a.png"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if _, err := f.Fetch(testCtx(t), ""); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL for empty url, got %v", err)
	}
	if _, err := f.Fetch(testCtx(t), serve(t, http.StatusOK, []byte("<html>hello</html>"))); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if _, err := f.Fetch(testCtx(t), serve(t, http.StatusOK, bytes.Repeat([]byte{0}, 65))); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	_, err := f.Fetch(testCtx(t), serve(t, http.StatusNotFound, nil))
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
}

func TestNormalize_PassThrough(t *testing.T) {
	in := pngBytes(t, 10, 5)
	out, err := Normalize(in, 20, 0)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("png within bounds must pass through untouched")
	}
}

func TestNormalize_Downscales(t *testing.T) {
	out, err := Normalize(pngBytes(t, 40, 10), 20, 0)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || cfg.Width != 20 || cfg.Height != 5 {
		t.Fatalf("unexpected result: %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestNormalize_ConvertsOtherFormats(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 3, 3), color.Palette{color.Black, color.White})
	var b bytes.Buffer
	if err := gif.Encode(&b, src, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	out, err := Normalize(b.Bytes(), 0, 0)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(out)); err != nil || format != "png" {
		t.Fatalf("expected png, got %q %v", format, err)
	}
}

func TestNormalize_Garbage(t *testing.T) {
	if _, err := Normalize([]byte("nope"), 10, 0); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

// withPNGSize rewrites the IHDR dimensions of a PNG, keeping the chunk valid.
// The pixel data no longer matches, which only a full decode would notice.
func withPNGSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected png layout")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestNormalize_RejectsHugeDeclaredSize(t *testing.T) {
	bomb := withPNGSize(t, pngBytes(t, 1, 1), 12000, 12000)
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(bomb)); err != nil || cfg.Width != 12000 {
		t.Fatalf("crafted header not readable: %+v %v", cfg, err)
	}
	_, err := Normalize(bomb, 1024, DefaultMaxPixels)
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage for 144MP image, got %v", err)
	}
}

func TestNormalize_PixelBudgetBoundary(t *testing.T) {
	if _, err := Normalize(pngBytes(t, 10, 10), 0, 100); err != nil {
		t.Fatalf("image at the budget must pass: %v", err)
	}
	if _, err := Normalize(pngBytes(t, 10, 11), 0, 100); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage above the budget, got %v", err)
	}
}

package imagefetch

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size of an image, whatever its encoded size.
const DefaultMaxPixels = 50_000_000

// Normalize returns an image the model endpoint can decode. PNG and JPEG
// within maxDim are passed through untouched. Other formats are re-encoded as
// PNG, and anything larger than maxDim on either side is scaled down keeping
// its aspect ratio. maxDim <= 0 disables scaling.
//
// Images declaring more than maxPixels pixels are rejected from their header,
// before any decoding; maxPixels <= 0 disables the check.
func Normalize(data []byte, maxDim, maxPixels int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d dépasse %d pixels", ErrNotImage, cfg.Width, cfg.Height, maxPixels)
	}
	fits := maxDim <= 0 || (cfg.Width <= maxDim && cfg.Height <= maxDim)
	if fits && (format == "png" || format == "jpeg") {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if !fits {
		w, h := scaledSize(cfg.Width, cfg.Height, maxDim)
		img = transform.Resize(img, w, h, transform.Linear)
	}
	var out bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&out, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return out.Bytes(), nil
}

func scaledSize(w, h, maxDim int) (int, int) {
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}

package intake

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	// Decoders registered with image.Decode.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/dmitrijs2005/timeboard/internal/common"
)

const (
	minQuality   = 30
	qualityStep  = 10
	minDimension = 64
)

type compressed struct {
	mime    string
	payload []byte
	width   int
	height  int
}

// compress decodes raw, bounds its long edge to opts.MaxDimension and
// re-encodes it until the payload fits opts.MaxBytes. Opaque images become
// JPEG, stepping the quality down first and the dimensions second; images
// with transparency stay PNG and can only shrink. A JPEG or PNG that already
// fits both bounds is passed through untouched. Sources larger than
// opts.MaxPixels are refused from their header alone.
func compress(raw []byte, opts Options) (compressed, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return compressed{}, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
		return compressed{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", common.ErrImageTooBig, cfg.Width, cfg.Height, opts.MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return compressed{}, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), opts.MaxDimension)

	if w == b.Dx() && h == b.Dy() && len(raw) <= opts.MaxBytes && (format == "jpeg" || format == "png") {
		return compressed{mime: "image/" + format, payload: raw, width: w, height: h}, nil
	}

	opaque := isOpaque(img)

	for {
		scaled := img
		if w != b.Dx() || h != b.Dy() {
			scaled = resize(img, w, h)
		}

		if opaque {
			for q := opts.Quality; q >= minQuality; q -= qualityStep {
				var buf bytes.Buffer
				if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: q}); err != nil {
					return compressed{}, fmt.Errorf("encode jpeg: %w", err)
				}
				if buf.Len() <= opts.MaxBytes {
					return compressed{mime: "image/jpeg", payload: buf.Bytes(), width: w, height: h}, nil
				}
			}
		} else {
			var buf bytes.Buffer
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			if err := enc.Encode(&buf, scaled); err != nil {
				return compressed{}, fmt.Errorf("encode png: %w", err)
			}
			if buf.Len() <= opts.MaxBytes {
				return compressed{mime: "image/png", payload: buf.Bytes(), width: w, height: h}, nil
			}
		}

		if w <= minDimension && h <= minDimension {
			return compressed{}, common.ErrImageTooBig
		}
		w, h = max(1, w*3/4), max(1, h*3/4)
	}
}

// fit scales (w, h) down proportionally so that neither side exceeds limit.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

func resize(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}

// Package intake turns user-selected image files into bounded, inline data
// URIs that can be stored on an event and rendered without a separate fetch.
package intake

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/logging"
)

// Options bounds the encoded output.
type Options struct {
	// MaxBytes is the ceiling for the encoded (pre-base64) image.
	MaxBytes int
	// MaxDimension bounds the long edge in pixels.
	MaxDimension int
	// Quality is the first JPEG quality tried.
	Quality int
	// MaxPixels bounds width*height of an accepted source, checked before the
	// bitmap is decoded.
	MaxPixels int
}

// DefaultOptions mirrors the limits of the timeline form: ~0.4 MB and 1024 px.
func DefaultOptions() Options {
	return Options{MaxBytes: 400 * 1024, MaxDimension: 1024, Quality: 85, MaxPixels: 24_000_000}
}

// Recorder receives one observation per processed file.
type Recorder interface {
	ImageProcessed(mime string, elapsed time.Duration, err error)
}

// Encoded is one successfully processed file.
type Encoded struct {
	Name    string
	MIME    string
	DataURI string
	Width   int
	Height  int
	Bytes   int
}

// Intake processes image files one at a time.
type Intake struct {
	opts     Options
	logger   logging.Logger
	recorder Recorder
}

// New creates an Intake. Zero option fields fall back to DefaultOptions;
// recorder may be nil.
func New(opts Options, logger logging.Logger, recorder Recorder) *Intake {
	def := DefaultOptions()
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = def.MaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = def.MaxPixels
	}
	return &Intake{opts: opts, logger: logger.With("module", "intake"), recorder: recorder}
}

// Ingest returns a lazy sequence over sources, in order. Each file is fully
// processed before the next one is opened. A failing file yields a non-nil
// error and the sequence moves on; a cancelled ctx yields ctx.Err() once and
// ends the sequence. Every range over the result starts from the first file.
func (in *Intake) Ingest(ctx context.Context, sources []Source) iter.Seq2[Encoded, error] {
	return func(yield func(Encoded, error) bool) {
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				yield(Encoded{}, err)
				return
			}
			if !yield(in.encode(src)) {
				return
			}
		}
	}
}

func (in *Intake) encode(src Source) (Encoded, error) {
	start := time.Now()

	enc, err := in.process(src)
	if in.recorder != nil {
		in.recorder.ImageProcessed(enc.MIME, time.Since(start), err)
	}
	if err != nil {
		return Encoded{}, fmt.Errorf("image %q: %w", src.Name(), err)
	}
	return enc, nil
}

func (in *Intake) process(src Source) (Encoded, error) {
	rc, err := src.Open()
	if err != nil {
		return Encoded{}, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return Encoded{}, fmt.Errorf("read: %w", err)
	}

	c, err := compress(raw, in.opts)
	if err != nil {
		return Encoded{}, err
	}

	return Encoded{
		Name:    src.Name(),
		MIME:    c.mime,
		DataURI: EncodeDataURI(c.mime, c.payload),
		Width:   c.width,
		Height:  c.height,
		Bytes:   len(c.payload),
	}, nil
}

package intake

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/logging"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rnd := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeURI(t *testing.T, uri string) (string, image.Config) {
	t.Helper()
	mime, payload, err := DecodeDataURI(uri)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	require.NoError(t, err)
	return mime, cfg
}

var red = color.NRGBA{R: 200, A: 255}

type fakeRecorder struct {
	mu    sync.Mutex
	calls int
	fails int
}

func (r *fakeRecorder) ImageProcessed(_ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if err != nil {
		r.fails++
	}
}

func TestNew_DefaultsZeroOptions(t *testing.T) {
	in := New(Options{}, logging.Nop{}, nil)
	assert.Equal(t, DefaultOptions(), in.opts)
}

func TestPending_AppendKeepsSelectionOrder(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	p := NewPending(nil)

	sources := []Source{
		FromBytes("a.png", solidPNG(t, 10, 10, red)),
		FromBytes("b.png", solidPNG(t, 20, 10, red)),
		FromBytes("c.png", solidPNG(t, 30, 10, red)),
	}
	n, err := p.Append(context.Background(), in, sources)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	images := p.Images()
	require.Len(t, images, 3)
	for i, want := range []int{10, 20, 30} {
		_, cfg := decodeURI(t, images[i])
		assert.Equal(t, want, cfg.Width, "image %d", i)
	}

	// A second batch only adds.
	n, err = p.Append(context.Background(), in, []Source{FromBytes("d.png", solidPNG(t, 40, 10, red))})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Equal(t, 4, p.Len())
	_, cfg := decodeURI(t, p.Images()[3])
	assert.Equal(t, 40, cfg.Width)
	assert.False(t, p.Busy())
}

func TestPending_Remove(t *testing.T) {
	p := NewPending([]string{"e1", "e2", "e3"})

	require.NoError(t, p.Remove(1))
	assert.Equal(t, []string{"e1", "e3"}, p.Images())

	err := p.Remove(2)
	assert.ErrorIs(t, err, common.ErrIndexOutOfRange)
	err = p.Remove(-1)
	assert.ErrorIs(t, err, common.ErrIndexOutOfRange)
	assert.Equal(t, []string{"e1", "e3"}, p.Images())
}

func TestNewPending_CopiesInput(t *testing.T) {
	src := []string{"e1", "e2"}
	p := NewPending(src)
	require.NoError(t, p.Remove(0))
	assert.Equal(t, []string{"e1", "e2"}, src)
}

func TestIngest_BoundsLongEdge(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)

	var got []Encoded
	for enc, err := range in.Ingest(context.Background(), []Source{FromBytes("wide.png", solidPNG(t, 2048, 1024, red))}) {
		require.NoError(t, err)
		got = append(got, enc)
	}
	require.Len(t, got, 1)
	assert.Equal(t, 1024, got[0].Width)
	assert.Equal(t, 512, got[0].Height)
	assert.Equal(t, "image/jpeg", got[0].MIME)

	mime, cfg := decodeURI(t, got[0].DataURI)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestIngest_RecompressesToFitByteLimit(t *testing.T) {
	raw := noisyPNG(t, 256, 256)
	opts := Options{MaxBytes: 10_000, MaxDimension: 1024, Quality: 85}
	require.Greater(t, len(raw), opts.MaxBytes)

	in := New(opts, logging.Nop{}, nil)
	for enc, err := range in.Ingest(context.Background(), []Source{FromBytes("noise.png", raw)}) {
		require.NoError(t, err)
		assert.LessOrEqual(t, enc.Bytes, opts.MaxBytes)
		assert.Equal(t, "image/jpeg", enc.MIME)
		assert.LessOrEqual(t, enc.Width, 256)
	}
}

func TestIngest_PassesThroughSmallImages(t *testing.T) {
	raw := solidPNG(t, 16, 16, red)
	in := New(DefaultOptions(), logging.Nop{}, nil)

	for enc, err := range in.Ingest(context.Background(), []Source{FromBytes("small.png", raw)}) {
		require.NoError(t, err)
		_, payload, err := DecodeDataURI(enc.DataURI)
		require.NoError(t, err)
		assert.Equal(t, raw, payload)
	}
}

func TestIngest_TransparencyStaysPNG(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	raw := solidPNG(t, 2000, 10, color.NRGBA{G: 100, A: 128})

	for enc, err := range in.Ingest(context.Background(), []Source{FromBytes("glass.png", raw)}) {
		require.NoError(t, err)
		assert.Equal(t, "image/png", enc.MIME)
		assert.Equal(t, 1024, enc.Width)
		assert.True(t, strings.HasPrefix(enc.DataURI, "data:image/png;base64,"))
	}
}

// hugeHeaderPNG is a 1x1 PNG whose header claims w x h pixels.
func hugeHeaderPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	raw := solidPNG(t, 1, 1, red)
	// IHDR data starts after the signature, length and type.
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestIngest_RejectsOversizedPixelCountBeforeDecoding(t *testing.T) {
	rec := &fakeRecorder{}
	in := New(DefaultOptions(), logging.Nop{}, rec)
	raw := hugeHeaderPNG(t, 12000, 12000)
	require.Less(t, len(raw), 1024)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 12000, cfg.Width)

	var errs []error
	for enc, err := range in.Ingest(context.Background(), []Source{FromBytes("bomb.png", raw)}) {
		assert.Empty(t, enc.DataURI)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], common.ErrImageTooBig)
	assert.Contains(t, errs[0].Error(), "12000x12000")
	assert.Equal(t, 1, rec.fails)
}

func TestIngest_MaxPixelsIsConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPixels = 100 * 100
	in := New(opts, logging.Nop{}, nil)

	sources := []Source{
		FromBytes("fits.png", solidPNG(t, 100, 100, red)),
		FromBytes("over.png", solidPNG(t, 101, 100, red)),
	}
	var errs []error
	for _, err := range in.Ingest(context.Background(), sources) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], common.ErrImageTooBig)
}

func TestPending_FailedFileDoesNotStopBatch(t *testing.T) {
	rec := &fakeRecorder{}
	in := New(DefaultOptions(), logging.Nop{}, rec)
	p := NewPending(nil)

	sources := []Source{
		FromBytes("ok1.png", solidPNG(t, 10, 10, red)),
		FromBytes("broken.png", []byte("definitely not an image")),
		FromBytes("ok2.png", solidPNG(t, 12, 10, red)),
	}
	n, err := p.Append(context.Background(), in, sources)
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrImageDecode)
	assert.Contains(t, err.Error(), "broken.png")

	images := p.Images()
	require.Len(t, images, 2)
	_, cfg := decodeURI(t, images[1])
	assert.Equal(t, 12, cfg.Width)

	assert.Equal(t, 3, rec.calls)
	assert.Equal(t, 1, rec.fails)
}

func TestIngest_CancelledContext(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range in.Ingest(ctx, []Source{
		FromBytes("a.png", solidPNG(t, 10, 10, red)),
		FromBytes("b.png", solidPNG(t, 10, 10, red)),
	}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], context.Canceled))
}

func TestIngest_Restartable(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	seq := in.Ingest(context.Background(), []Source{
		FromBytes("a.png", solidPNG(t, 10, 10, red)),
		FromBytes("b.png", solidPNG(t, 10, 10, red)),
	})

	for range 2 {
		count := 0
		for _, err := range seq {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, 2, count)
	}
}

func TestIngest_StopsWhenConsumerBreaks(t *testing.T) {
	rec := &fakeRecorder{}
	in := New(DefaultOptions(), logging.Nop{}, rec)
	for range in.Ingest(context.Background(), []Source{
		FromBytes("a.png", solidPNG(t, 10, 10, red)),
		FromBytes("b.png", solidPNG(t, 10, 10, red)),
	}) {
		break
	}
	assert.Equal(t, 1, rec.calls)
}

type blockingSource struct {
	release chan struct{}
	data    []byte
}

func (s blockingSource) Name() string { return "slow.png" }

func (s blockingSource) Open() (io.ReadCloser, error) {
	<-s.release
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestPending_BusyWhileBatchInFlight(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	p := NewPending(nil)
	src := blockingSource{release: make(chan struct{}), data: solidPNG(t, 10, 10, red)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Append(context.Background(), in, []Source{src})
	}()

	require.Eventually(t, p.Busy, time.Second, 5*time.Millisecond)
	close(src.release)
	<-done

	assert.False(t, p.Busy())
	assert.Equal(t, 1, p.Len())
}

func TestPending_SealRefusesWhileBatchInFlight(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	p := NewPending([]string{"e1"})
	src := blockingSource{release: make(chan struct{}), data: solidPNG(t, 10, 10, red)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Append(context.Background(), in, []Source{src})
	}()
	require.Eventually(t, p.Busy, time.Second, 5*time.Millisecond)

	_, err := p.Seal()
	assert.ErrorIs(t, err, common.ErrDraftBusy)

	close(src.release)
	<-done

	images, err := p.Seal()
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestPending_SealedListTakesNoChanges(t *testing.T) {
	in := New(DefaultOptions(), logging.Nop{}, nil)
	p := NewPending([]string{"e1", "e2"})

	images, err := p.Seal()
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, images)

	n, err := p.Append(context.Background(), in, []Source{FromBytes("late.png", solidPNG(t, 10, 10, red))})
	assert.ErrorIs(t, err, common.ErrDraftBusy)
	assert.Zero(t, n)
	assert.ErrorIs(t, p.Remove(0), common.ErrDraftBusy)
	assert.Equal(t, []string{"e1", "e2"}, p.Images())
	assert.False(t, p.Busy())

	p.Unseal()
	n, err = p.Append(context.Background(), in, []Source{FromBytes("late.png", solidPNG(t, 10, 10, red))})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, p.Remove(0))
	assert.Equal(t, 2, p.Len())
}

func TestDataURI_RoundTrip(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	uri := EncodeDataURI("image/png", payload)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	mime, got, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, payload, got)

	for _, bad := range []string{"", "http://x/y.png", "data:image/png,raw", "data:image/png;base64"} {
		_, _, err := DecodeDataURI(bad)
		assert.Error(t, err, bad)
	}
}

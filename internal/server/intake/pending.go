package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/timeboard/internal/common"
)

// Pending is the ordered image list of a record that has not been committed
// yet. Batches only ever add to it; Remove is the only way to drop an image.
type Pending struct {
	mu     sync.Mutex
	images []string
	busy   int
	sealed bool

	// batch serializes Append calls so a batch lands contiguously.
	batch sync.Mutex
}

// NewPending starts a list, e.g. from the images of a record being edited.
func NewPending(images []string) *Pending {
	return &Pending{images: append([]string(nil), images...)}
}

// Append runs sources through in and appends each result as soon as it is
// ready, in selection order. Failed files are logged and skipped; files that
// succeeded stay even when later ones fail. It returns how many images were
// added and the joined per-file errors.
func (p *Pending) Append(ctx context.Context, in *Intake, sources []Source) (int, error) {
	if err := p.begin(); err != nil {
		return 0, err
	}
	defer p.end()

	p.batch.Lock()
	defer p.batch.Unlock()

	var (
		added int
		errs  []error
	)
	for enc, err := range in.Ingest(ctx, sources) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				errs = append(errs, err)
				break
			}
			in.logger.Warn(ctx, "image skipped", "error", err)
			errs = append(errs, err)
			continue
		}

		p.mu.Lock()
		p.images = append(p.images, enc.DataURI)
		p.mu.Unlock()
		added++

		in.logger.Debug(ctx, "image added", "name", enc.Name, "mime", enc.MIME,
			"width", enc.Width, "height", enc.Height, "bytes", enc.Bytes)
	}

	return added, errors.Join(errs...)
}

// Remove drops the image at index; later images move down by one.
func (p *Pending) Remove(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return fmt.Errorf("images are being committed: %w", common.ErrDraftBusy)
	}
	if index < 0 || index >= len(p.images) {
		return fmt.Errorf("image %d of %d: %w", index, len(p.images), common.ErrIndexOutOfRange)
	}
	p.images = append(p.images[:index], p.images[index+1:]...)
	return nil
}

// Images returns a copy of the current list.
func (p *Pending) Images() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.images...)
}

// Len returns the number of images.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.images)
}

// Busy reports whether a batch is in flight or waiting to run.
func (p *Pending) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy > 0
}

// Seal freezes the list for commit and returns it. It fails with
// common.ErrDraftBusy while a batch is in flight; once sealed, Append and
// Remove fail the same way until Unseal.
func (p *Pending) Seal() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy > 0 {
		return nil, fmt.Errorf("%d image batch(es) in flight: %w", p.busy, common.ErrDraftBusy)
	}
	p.sealed = true
	return append([]string{}, p.images...), nil
}

// Unseal reopens the list after a commit that did not go through.
func (p *Pending) Unseal() {
	p.mu.Lock()
	p.sealed = false
	p.mu.Unlock()
}

func (p *Pending) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return fmt.Errorf("images are being committed: %w", common.ErrDraftBusy)
	}
	p.busy++
	return nil
}

func (p *Pending) end() {
	p.mu.Lock()
	p.busy--
	p.mu.Unlock()
}

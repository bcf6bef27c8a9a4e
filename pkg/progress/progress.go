// Package progress draws progress bars on a writer carried by a context.
// Without a writer every call is a no-op.
package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-getter"
	pb "github.com/schollz/progressbar/v3"
)

type pbVal struct {
	w io.Writer
}

type pbKey struct{}

func Open(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, pbKey{}, pbVal{w})
}

func writer(ctx context.Context) (io.Writer, bool) {
	h, ok := ctx.Value(pbKey{}).(pbVal)
	if !ok {
		return nil, false
	}

	return h.w, true
}

func theme() pb.Option {
	return pb.OptionSetTheme(
		pb.Theme{Saucer: "=", SaucerPadding: " ", BarStart: "[", BarEnd: "]"},
	)
}

// Progress counts through a fixed number of steps.
type Progress struct {
	bar    *pb.ProgressBar
	prefix string
}

func (t *Progress) Tick() {
	if t.bar != nil {
		t.bar.Add64(1)
	}
}

func (t *Progress) On(step string) {
	if t.bar != nil {
		t.bar.Describe(t.prefix + ": " + step)
	}
}

func (t *Progress) Close() {
	if t.bar != nil {
		t.bar.Close()
	}
}

func Count(ctx context.Context, total int64, desc string) *Progress {
	w, ok := writer(ctx)
	if !ok {
		return &Progress{}
	}

	bar := pb.NewOptions64(
		total,
		pb.OptionSetDescription(desc),
		pb.OptionSetWriter(w),
		pb.OptionSetWidth(20),
		pb.OptionThrottle(65*time.Millisecond),
		pb.OptionShowCount(),
		theme(),
		pb.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
	bar.RenderBlank()

	return &Progress{prefix: desc, bar: bar}
}

// Tracker reports byte progress of downloads. It satisfies
// getter.ProgressTracker.
type Tracker struct {
	w io.Writer
}

var _ getter.ProgressTracker = (*Tracker)(nil)

// Downloads returns a Tracker for the writer in ctx, or nil when ctx has
// none.
func Downloads(ctx context.Context) *Tracker {
	w, ok := writer(ctx)
	if !ok {
		return nil
	}

	return &Tracker{w: w}
}

func (t *Tracker) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	if totalSize <= 0 {
		totalSize = -1
	}

	bar := pb.NewOptions64(
		totalSize,
		pb.OptionSetDescription(src),
		pb.OptionSetWriter(t.w),
		pb.OptionSetWidth(20),
		pb.OptionThrottle(65*time.Millisecond),
		pb.OptionShowBytes(true),
		theme(),
		pb.OptionOnCompletion(func() {
			fmt.Fprint(t.w, "\n")
		}),
	)

	if currentSize > 0 {
		bar.Add64(currentSize)
	}

	return &trackedReader{ReadCloser: stream, bar: bar}
}

type trackedReader struct {
	io.ReadCloser
	bar *pb.ProgressBar
}

func (r *trackedReader) Read(b []byte) (int, error) {
	n, err := r.ReadCloser.Read(b)
	if n > 0 {
		r.bar.Add(n)
	}

	return n, err
}

func (r *trackedReader) Close() error {
	r.bar.Finish()
	return r.ReadCloser.Close()
}

package reveal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gridcrawl/gridcrawl/internal/config"
	"github.com/gridcrawl/gridcrawl/internal/progress"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fastConfig keeps the politeness pauses tiny so tests run quickly while
// still exercising the pause path.
func fastConfig() config.Reveal {
	return config.Reveal{
		ControlTimeout: 50 * time.Millisecond,
		ScrollPauseMin: time.Millisecond,
		ScrollPauseMax: 2 * time.Millisecond,
		ClickPauseMin:  time.Millisecond,
		ClickPauseMax:  2 * time.Millisecond,
		RenderPauseMin: time.Millisecond,
		RenderPauseMax: 2 * time.Millisecond,
	}
}

// fakeControl scripts the behavior of one located load-more control.
type fakeControl struct {
	visible    bool
	visibleErr error
	scrollErr  error
	clickErr   error
	clicks     int
}

func (f *fakeControl) Visible() (bool, error) { return f.visible, f.visibleErr }
func (f *fakeControl) ScrollIntoView() error  { return f.scrollErr }
func (f *fakeControl) Click() error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks++
	return nil
}

// fakePage yields scripted controls in sequence; when the script runs
// out, FindControl reports the control as gone.
type fakePage struct {
	controls []*fakeControl
	findErrs []error
	findIdx  int
	scrolls  int
}

func (f *fakePage) ScrollToBottom(ctx context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakePage) ContentHeight(ctx context.Context) (int, error) {
	return 1000 * (f.findIdx + 1), nil
}

func (f *fakePage) FindControl(ctx context.Context, timeout time.Duration) (Control, error) {
	i := f.findIdx
	f.findIdx++
	if i < len(f.findErrs) && f.findErrs[i] != nil {
		return nil, f.findErrs[i]
	}
	if i >= len(f.controls) || f.controls[i] == nil {
		return nil, fmt.Errorf("%w after %s", types.ErrControlNotFound, timeout)
	}
	return f.controls[i], nil
}

func TestRunControlNeverAppears(t *testing.T) {
	page := &fakePage{}
	c := New(fastConfig(), testLogger, nil)

	start := time.Now()
	clicks, err := c.Run(context.Background(), page)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("control absence must be normal completion, got %v", err)
	}
	if clicks != 0 {
		t.Errorf("clicksPerformed = %d, want 0", clicks)
	}
	if elapsed > 2*time.Second {
		t.Errorf("loop took %s, should terminate within initial wait + timeout", elapsed)
	}
}

func TestRunControlInvisibleStops(t *testing.T) {
	page := &fakePage{controls: []*fakeControl{{visible: false}}}
	c := New(fastConfig(), testLogger, nil)

	clicks, err := c.Run(context.Background(), page)
	if err != nil {
		t.Fatalf("invisible control must be normal completion, got %v", err)
	}
	if clicks != 0 {
		t.Errorf("clicksPerformed = %d, want 0", clicks)
	}
}

func TestRunClicksUntilExhausted(t *testing.T) {
	ctl1 := &fakeControl{visible: true}
	ctl2 := &fakeControl{visible: true}
	page := &fakePage{controls: []*fakeControl{ctl1, ctl2}}

	counters := progress.NewCounters()
	c := New(fastConfig(), testLogger, counters)

	clicks, err := c.Run(context.Background(), page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clicks != 2 {
		t.Errorf("clicksPerformed = %d, want 2", clicks)
	}
	if ctl1.clicks != 1 || ctl2.clicks != 1 {
		t.Errorf("control clicks = %d/%d, want 1/1", ctl1.clicks, ctl2.clicks)
	}
	if got := counters.Snapshot()["clicks_performed"]; got != 2 {
		t.Errorf("reported clicks = %d, want 2", got)
	}
}

func TestRunStaleControlRetries(t *testing.T) {
	stale := &fakeControl{visible: true, clickErr: fmt.Errorf("click: %w", types.ErrStaleControl)}
	fresh := &fakeControl{visible: true}
	page := &fakePage{controls: []*fakeControl{stale, fresh}}

	c := New(fastConfig(), testLogger, nil)

	clicks, err := c.Run(context.Background(), page)
	if err != nil {
		t.Fatalf("stale control must be transient, got %v", err)
	}
	if clicks != 1 {
		t.Errorf("clicksPerformed = %d, want 1", clicks)
	}
	if fresh.clicks != 1 {
		t.Errorf("fresh control clicks = %d, want 1", fresh.clicks)
	}
}

func TestRunInteractionErrorIsWarning(t *testing.T) {
	broken := &fakeControl{visible: true, clickErr: errors.New("browser crashed")}
	page := &fakePage{controls: []*fakeControl{broken}}

	c := New(fastConfig(), testLogger, nil)

	clicks, err := c.Run(context.Background(), page)
	if clicks != 0 {
		t.Errorf("clicksPerformed = %d, want 0", clicks)
	}

	var revealErr *types.RevealError
	if !errors.As(err, &revealErr) {
		t.Fatalf("expected *types.RevealError, got %v", err)
	}
	if revealErr.Transient {
		t.Error("interaction error should not be marked transient")
	}
}

func TestRunMaxClicksCap(t *testing.T) {
	var controls []*fakeControl
	for i := 0; i < 10; i++ {
		controls = append(controls, &fakeControl{visible: true})
	}
	page := &fakePage{controls: controls}

	cfg := fastConfig()
	cfg.MaxClicks = 3
	c := New(cfg, testLogger, nil)

	clicks, err := c.Run(context.Background(), page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clicks != 3 {
		t.Errorf("clicksPerformed = %d, want 3", clicks)
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{controls: []*fakeControl{{visible: true}}}
	c := New(fastConfig(), testLogger, nil)

	clicks, err := c.Run(ctx, page)
	if clicks != 0 {
		t.Errorf("clicksPerformed = %d, want 0", clicks)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

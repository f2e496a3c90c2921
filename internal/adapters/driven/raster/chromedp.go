// Package raster captures rendered invoice documents with headless
// Chromium through chromedp.
package raster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png" // screenshot decoding
	"net/url"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// viewportWidth matches the printable element width so nothing wraps.
const viewportWidth = 1024

// Options configures the browser.
type Options struct {
	// ExecPath overrides the Chromium executable. Empty uses chromedp's lookup.
	ExecPath string
}

// Rasterizer opens documents in a fresh headless browser per export.
type Rasterizer struct {
	opts Options
}

// New creates a rasterizer.
func New(opts Options) *Rasterizer {
	return &Rasterizer{opts: opts}
}

func (r *Rasterizer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(viewportWidth, 768),
	)
	if r.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.opts.ExecPath))
	}
	return opts
}

// Open starts a browser, loads doc and checks that its target exists.
func (r *Rasterizer) Open(ctx context.Context, doc *domain.RenderDocument) (driven.CaptureSurface, error) {
	if doc.TargetID == "" {
		return nil, domain.ErrRenderTargetNotFound
	}

	// The browser lives until Close; calls are bounded by their own contexts.
	base := context.WithoutCancel(ctx)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(base, r.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &surface{
		tab: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
		selector:     "#" + doc.TargetID,
		noPrintClass: doc.NoPrintClass,
	}

	// The first Run launches Chrome and attaches the tab, both bound to the
	// context it is given, so it must be the long-lived tab context itself.
	// Later calls run on cancellable children of it.
	stopStart := context.AfterFunc(ctx, s.cancel)
	err := chromedp.Run(tabCtx)
	stopStart()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("%w: start browser: %w", domain.ErrRasterizeFailed, err)
	}

	done := logger.Timed("load document")
	var found bool
	err = s.run(ctx,
		chromedp.Navigate(DataURL(doc.HTML)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(jsCall(`(sel) => document.querySelector(sel) !== null`, s.selector), &found),
	)
	done()
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("%w: load document: %w", domain.ErrRasterizeFailed, err)
	}
	if !found {
		s.cancel()
		return nil, fmt.Errorf("%w: %s", domain.ErrRenderTargetNotFound, s.selector)
	}
	return s, nil
}

// surface is one loaded document in its own browser.
type surface struct {
	tab          context.Context
	cancel       context.CancelFunc
	selector     string
	noPrintClass string
}

// run executes actions on the tab, bounded by ctx.
func (s *surface) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

const hideScript = `(cls) => {
	const els = Array.from(document.getElementsByClassName(cls));
	const prior = els.map((el) => el.style.display);
	els.forEach((el) => { el.style.display = 'none'; });
	return prior;
}`

const restoreScript = `(cls, prior) => {
	const els = Array.from(document.getElementsByClassName(cls));
	els.forEach((el, i) => { el.style.display = i < prior.length ? prior[i] : ''; });
	return els.length;
}`

// HideNonPrintable hides every element with the no-print class.
func (s *surface) HideNonPrintable(ctx context.Context) (*domain.VisibilitySnapshot, error) {
	snapshot := &domain.VisibilitySnapshot{}
	if s.noPrintClass == "" {
		return snapshot, nil
	}
	if err := s.run(ctx, chromedp.Evaluate(jsCall(hideScript, s.noPrintClass), &snapshot.Displays)); err != nil {
		return nil, fmt.Errorf("hide non-printable elements: %w", err)
	}
	logger.Debug("Hid %d non-printable elements", len(snapshot.Displays))
	return snapshot, nil
}

// RestoreVisibility puts back the recorded display values.
func (s *surface) RestoreVisibility(ctx context.Context, snapshot *domain.VisibilitySnapshot) error {
	if s.noPrintClass == "" || snapshot == nil {
		return nil
	}
	prior := snapshot.Displays
	if prior == nil {
		prior = []string{}
	}
	var restored int
	if err := s.run(ctx, chromedp.Evaluate(jsCall(restoreScript, s.noPrintClass, prior), &restored)); err != nil {
		return fmt.Errorf("restore non-printable elements: %w", err)
	}
	return nil
}

// Capture screenshots the printable element.
func (s *surface) Capture(ctx context.Context, opts domain.RasterOptions) (*domain.Bitmap, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var actions []chromedp.Action
	if opts.Background != "" {
		rgba, err := ParseColor(opts.Background)
		if err != nil {
			return nil, err
		}
		actions = append(actions, emulation.SetDefaultBackgroundColorOverride().WithColor(rgba))
	}

	var buf []byte
	actions = append(actions, chromedp.ScreenshotScale(s.selector, scale, &buf, chromedp.ByQuery))

	done := logger.Timed("capture")
	err := s.run(ctx, actions...)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %w", domain.ErrRasterizeFailed, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %w", domain.ErrCaptureFailed, err)
	}
	logger.Debug("Captured %dx%d px at scale %.1f", cfg.Width, cfg.Height, scale)

	return &domain.Bitmap{
		WidthPx:  cfg.Width,
		HeightPx: cfg.Height,
		Format:   domain.ImageFormatPNG,
		Data:     buf,
	}, nil
}

// Close shuts the browser down.
func (s *surface) Close() error {
	s.cancel()
	return nil
}

// DataURL encodes html as a text/html data URL.
func DataURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}

// ParseColor parses #RGB or #RRGGBB into an opaque colour.
func ParseColor(hex string) (*cdp.RGBA, error) {
	h, ok := strings.CutPrefix(strings.TrimSpace(hex), "#")
	if ok && len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if !ok || len(h) != 6 {
		return nil, fmt.Errorf("%w: background %q must be #RGB or #RRGGBB", domain.ErrInvalidInput, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: background %q is not hexadecimal", domain.ErrInvalidInput, hex)
	}
	return &cdp.RGBA{
		R: int64(v >> 16 & 0xff),
		G: int64(v >> 8 & 0xff),
		B: int64(v & 0xff),
		A: 1,
	}, nil
}

// jsCall builds an expression applying fn to JSON-encoded arguments.
func jsCall(fn string, args ...any) string {
	encoded := make([]string, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			b = []byte("null")
		}
		encoded[i] = string(b)
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")"
}

package browser

import (
	"context"

	"github.com/chromedp/chromedp"
)

// Options configures the Chrome process
type Options struct {
	Headless  bool
	UserAgent string
}

// NewAllocator creates a Chrome exec allocator context from opts
func NewAllocator(parent context.Context, opts Options) (context.Context, context.CancelFunc) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	return chromedp.NewExecAllocator(parent, allocOpts...)
}

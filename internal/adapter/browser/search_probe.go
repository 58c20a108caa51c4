// Package browser drives the search page in headless Chrome.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	formSelector    = `#search-form`
	nameSelector    = `#search-form input[name="name"]`
	settledSelector = `#results .search-total, #results .search-empty, #results .error-box`
)

// SearchOutcome is what the results region showed after a typed search.
type SearchOutcome struct {
	URL     string
	Status  int // HTTP status of the search document
	Name    string
	Total   string
	Cards   int
	Empty   bool
	Error   string
	Elapsed time.Duration
}

// SearchProbe types into the live search form and reads back the results.
type SearchProbe struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSearchProbe starts a headless browser allocator. Close releases it.
func NewSearchProbe(pageLoadTimeout time.Duration, logger *zap.Logger) *SearchProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &SearchProbe{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  pageLoadTimeout,
		logger:   logger,
	}
}

// Close shuts the browser down.
func (p *SearchProbe) Close() {
	p.cancel()
}

// Search opens baseURL/search, types name and waits until the debounced
// request has settled into results, an empty state or an error.
func (p *SearchProbe) Search(ctx context.Context, baseURL, name string) (*SearchOutcome, error) {
	taskCtx, cancel := chromedp.NewContext(p.allocCtx, chromedp.WithLogf(p.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, p.timeout)
	defer cancel()

	// Stop with the caller as well as on our own timeout.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	out := &SearchOutcome{URL: strings.TrimRight(baseURL, "/") + "/search", Name: name}
	var empty, errText string

	var status atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	start := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(out.URL),
		chromedp.WaitVisible(formSelector, chromedp.ByQuery),
		chromedp.SendKeys(nameSelector, name, chromedp.ByQuery),
		chromedp.WaitVisible(settledSelector, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll('#results .card').length`, &out.Cards),
		chromedp.Evaluate(`(document.querySelector('#results .total') || {}).textContent || ''`, &out.Total),
		chromedp.Evaluate(`(document.querySelector('#results .search-empty') || {}).textContent || ''`, &empty),
		chromedp.Evaluate(`(document.querySelector('#results .error-box') || {}).textContent || ''`, &errText),
	)
	out.Elapsed = time.Since(start)
	if err != nil {
		p.logger.Error("search probe failed", zap.String("url", out.URL), zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("probe %s: %w", out.URL, err)
	}
	out.Status = int(status.Load())
	out.Empty = empty != ""
	out.Error = strings.TrimSpace(errText)

	p.logger.Info("search probe finished",
		zap.String("url", out.URL),
		zap.String("name", name),
		zap.Int("status", out.Status),
		zap.Int("cards", out.Cards),
		zap.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

package xmag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// rootSelector is the page's content-container query.
const rootSelector = "article"

// rodProvider implements Provider using headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodProvider struct {
	browser      *rod.Browser
	headless     bool
	storageState string
}

// Compile-time interface checks.
var (
	_ Provider = (*rodProvider)(nil)
	_ Page     = (*rodPage)(nil)
	_ Element  = (*rodElement)(nil)
)

func newRodProvider(headless bool, storageState string) *rodProvider {
	return &rodProvider{headless: headless, storageState: storageState}
}

// ensureBrowser lazily launches and connects to the browser.
func (p *rodProvider) ensureBrowser() error {
	if p.browser != nil {
		return nil
	}

	l := launcher.New().Headless(p.headless)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}

	if p.storageState != "" {
		if err := loadCookies(browser, p.storageState); err != nil {
			_ = browser.Close()
			return err
		}
	}

	p.browser = browser
	return nil
}

// loadCookies installs session cookies from a JSON file so authenticated
// pages render with the user's login.
func loadCookies(browser *rod.Browser, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- storage state path is user-provided
	if err != nil {
		return fmt.Errorf("reading storage state: %w", err)
	}

	var cookies []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("parsing storage state: %w", err)
	}

	if err := browser.SetCookies(cookies); err != nil {
		return fmt.Errorf("setting cookies: %w", err)
	}
	return nil
}

// Open navigates to url and waits for the initial document load.
func (p *rodProvider) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := p.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: loading %s", ErrArticleTimeout, url)
		}
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}

	return &rodPage{page: page}, nil
}

// Close releases browser resources.
func (p *rodProvider) Close() error {
	if p.browser != nil {
		err := p.browser.Close()
		p.browser = nil
		return err
	}
	return nil
}

// rodPage adapts a rod page to the Page interface.
type rodPage struct {
	page *rod.Page
}

// WaitReady blocks until a root content element appears.
func (p *rodPage) WaitReady(timeout time.Duration) error {
	_, err := p.page.Timeout(timeout).Element(rootSelector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: waiting for content", ErrArticleTimeout)
		}
		return fmt.Errorf("%w: %v", ErrArticleNotFound, err)
	}
	return nil
}

func (p *rodPage) Articles() []Element {
	elements, err := p.page.Elements(rootSelector)
	if err != nil {
		return nil
	}
	return wrapRodElements(elements)
}

// rodElement adapts a rod element handle to the Element interface.
// Lookup and read failures yield empty results; the selector treats those
// the same as absent nodes.
type rodElement struct {
	element *rod.Element
}

func (e *rodElement) Query(selector string) []Element {
	elements, err := e.element.Elements(selector)
	if err != nil {
		return nil
	}
	return wrapRodElements(elements)
}

func (e *rodElement) Text() string {
	text, err := e.element.Text()
	if err != nil {
		return ""
	}
	return text
}

func (e *rodElement) Attr(name string) string {
	value, err := e.element.Attribute(name)
	if err != nil || value == nil {
		return ""
	}
	return *value
}

func wrapRodElements(elements rod.Elements) []Element {
	wrapped := make([]Element, 0, len(elements))
	for _, element := range elements {
		wrapped = append(wrapped, &rodElement{element: element})
	}
	return wrapped
}

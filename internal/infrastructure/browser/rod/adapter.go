package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var ErrInvalidURL = errors.New("invalid url")

const (
	defaultTimeout    = 10 * time.Second
	defaultSlowMotion = 0
	maxScreenshotW    = 1024
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	Stealth    bool
	// UserDataDir keeps the chat site's login between runs.
	UserDataDir string
	// ControlURL attaches to an already running Chrome instead of launching one.
	ControlURL string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  false,
		DevTools:   false,
		Stealth:    true,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var l *launcher.Launcher
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().
			Context(ctx).
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain")
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().
		Context(ctx).
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	var page *rod.Page
	var err error
	if cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) activePage() (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.page == nil {
		return nil, output.ErrNoPage
	}
	return b.page, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	page, err := b.activePage()
	if err != nil {
		return err
	}

	p := page.Context(ctx)
	if err := p.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.Timeout(b.timeout * 3).WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file", "about":
		return nil
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
}

func (b *BrowserAdapter) Document(ctx context.Context) (output.Node, error) {
	page, err := b.activePage()
	if err != nil {
		return nil, err
	}
	doc, err := page.Context(ctx).Sleeper(rod.NotFoundSleeper).ElementByJS(rod.Eval(jsDocument))
	if err != nil {
		return nil, fmt.Errorf("resolve document: %w", err)
	}
	return &element{el: doc}, nil
}

// Observe installs a MutationObserver that reports through a CDP binding.
// Notifications are coalesced: a full channel means a batch is already pending.
func (b *BrowserAdapter) Observe(ctx context.Context) (<-chan struct{}, func(), error) {
	page, err := b.activePage()
	if err != nil {
		return nil, nil, err
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	binding := "__harvestNotify_" + id
	key := "__harvestObserver_" + id

	ch := make(chan struct{}, 1)
	stop, err := page.Expose(binding, func(gson.JSON) (interface{}, error) {
		select {
		case ch <- struct{}{}:
		default:
		}
		return nil, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("expose binding: %w", err)
	}

	if _, err := page.Context(ctx).Eval(jsObserve, binding, key); err != nil {
		_ = stop()
		return nil, nil, fmt.Errorf("install observer: %w", err)
	}

	var once sync.Once
	dispose := func() {
		once.Do(func() {
			// The caller's context may already be done; cleanup gets its own budget.
			_, _ = page.Timeout(b.timeout).Eval(jsUnobserve, key)
			_ = stop()
		})
	}
	return ch, dispose, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.activePage()
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotW {
		img = imaging.Resize(img, maxScreenshotW, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	page, err := b.activePage()
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

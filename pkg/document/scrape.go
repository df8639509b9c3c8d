package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// DefaultScrapeTimeout bounds a page fetch.
	DefaultScrapeTimeout = 30 * time.Second
	// MaxPageSize is the largest page body read.
	MaxPageSize = 50 * 1024 * 1024

	codeExamplesHeader = "\n\n--- EJEMPLOS DE CÓDIGO ENCONTRADOS ---\n\n"
	codeBlockSeparator = "\n\n---\n\n"
	minCodeBlockLength = 10
)

var (
	ErrUnsupportedURL = errors.New("solo se permiten URLs HTTP o HTTPS")
	ErrSiteNotFound   = errors.New("no se pudo encontrar el sitio web")
	ErrScrapeTimeout  = errors.New("tiempo de espera agotado al conectar con el sitio")
	ErrPageTooLarge   = errors.New("la página supera el tamaño máximo permitido")
)

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
}

// Elements whose text is dropped entirely.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Aside:    true,
}

var whitespace = regexp.MustCompile(`\s+`)

// Scraper fetches documentation pages.
type Scraper struct {
	client *resty.Client
	logger *zap.Logger
	now    func() time.Time
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithScraperLogger sets the scraper's logger.
func WithScraperLogger(logger *zap.Logger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
		s.client.SetLogger(logger.Sugar())
	}
}

// WithScrapeTimeout overrides the fetch timeout.
func WithScrapeTimeout(d time.Duration) ScraperOption {
	return func(s *Scraper) { s.client.SetTimeout(d) }
}

// NewScraper creates a scraper that identifies as a desktop browser.
func NewScraper(opts ...ScraperOption) *Scraper {
	logger := zap.NewNop()
	s := &Scraper{
		client: resty.New().
			SetTimeout(DefaultScrapeTimeout).
			SetHeaders(browserHeaders).
			SetLogger(logger.Sugar()),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape downloads rawURL and returns its visible text. Code samples found
// in <pre> and <code> blocks are appended after the text.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrUnsupportedURL
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("error HTTP %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxPageSize+1))
	if err != nil {
		return nil, fmt.Errorf("error al hacer scraping: %w", err)
	}
	if len(raw) > MaxPageSize {
		return nil, ErrPageTooLarge
	}

	doc, err := ParseHTML(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("error al hacer scraping: %w", err)
	}
	doc.Metadata.URL = rawURL
	doc.Metadata.ScrapedAt = s.now().UTC()

	s.logger.Debug("page scraped",
		zap.String("url", rawURL),
		zap.Int("chars", len(doc.Content)),
	)
	return doc, nil
}

func classifyFetchError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %s", ErrSiteNotFound, dnsErr.Name)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrScrapeTimeout
	}
	return fmt.Errorf("error al hacer scraping: %w", err)
}

// ParseHTML extracts the visible body text, the page metadata and the code
// samples of an HTML page.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &pageParser{}
	p.walk(root, false, false)

	content := strings.TrimSpace(whitespace.ReplaceAllString(strings.Join(p.text, " "), " "))
	if len(p.code) > 0 {
		content += codeExamplesHeader + strings.Join(p.code, codeBlockSeparator)
	}

	return &Document{
		Content: content,
		Metadata: storage.DocumentMetadata{
			Type:        TypeWeb,
			Title:       strings.TrimSpace(p.title),
			Description: p.description,
			Keywords:    p.keywords,
		},
	}, nil
}

type pageParser struct {
	text        []string
	code        []string
	title       string
	description string
	keywords    string
}

func (p *pageParser) walk(n *html.Node, inBody, inPre bool) {
	if n.Type == html.ElementNode {
		if skippedElements[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Body:
			inBody = true
		case atom.Title:
			if p.title == "" {
				p.title = textOf(n)
			}
			return
		case atom.Meta:
			p.meta(n)
		case atom.Pre, atom.Code:
			if !inPre {
				if code := strings.TrimSpace(textOf(n)); len(code) > minCodeBlockLength {
					p.code = append(p.code, code)
				}
			}
			inPre = true
		}
	}

	if n.Type == html.TextNode && inBody {
		if s := strings.TrimSpace(n.Data); s != "" {
			p.text = append(p.text, s)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, inBody, inPre)
	}
}

func (p *pageParser) meta(n *html.Node) {
	var name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name":
			name = strings.ToLower(a.Val)
		case "content":
			content = a.Val
		}
	}
	switch name {
	case "description":
		if p.description == "" {
			p.description = content
		}
	case "keywords":
		if p.keywords == "" {
			p.keywords = content
		}
	}
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

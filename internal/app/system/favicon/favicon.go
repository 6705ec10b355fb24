// Package favicon resolves a page URL to an icon URL, best effort.
//
// Resolution sits on the bookmark write path, so it must never fail the
// write: every error path (bad URL, timeout, non-2xx, unparsable HTML)
// degrades to a deterministic fallback instead of returning an error.
package favicon

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DefaultTimeout bounds one resolution fetch.
const DefaultTimeout = 10 * time.Second

// PlaceholderIcon is returned when even the page URL's origin cannot be
// determined.
const PlaceholderIcon = "https://via.placeholder.com/32x32/cccccc/666666?text=?"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Resolver turns a page URL into an icon URL. Implementations never
// return an error; failures produce a fallback value.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) string
}

// HTTPResolver fetches the page and reads icon hints from its markup.
type HTTPResolver struct {
	Client *http.Client
	Log    *zap.Logger
}

// New returns an HTTPResolver with the given per-fetch timeout.
func New(timeout time.Duration, logger *zap.Logger) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPResolver{
		Client: &http.Client{Timeout: timeout},
		Log:    logger,
	}
}

// relPriority orders the markup hints we accept, best first. Matches the
// lookup order clients historically relied on.
var relPriority = []string{
	"icon",
	"shortcut icon",
	"apple-touch-icon",
	"apple-touch-icon-precomposed",
	"mask-icon",
}

// Resolve fetches pageURL and returns the best icon reference found in
// its markup, made absolute against the page origin. On any failure it
// returns Fallback(pageURL).
func (r *HTTPResolver) Resolve(ctx context.Context, pageURL string) string {
	full := ensureScheme(pageURL)

	base, err := url.Parse(full)
	if err != nil || base.Host == "" {
		return Fallback(pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return Fallback(pageURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		r.debug("favicon fetch failed", pageURL, err)
		return Fallback(pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.debug("favicon fetch non-2xx", pageURL, nil)
		return Fallback(pageURL)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		r.debug("favicon parse failed", pageURL, err)
		return Fallback(pageURL)
	}

	icon := findIcon(doc)
	if icon == "" {
		icon = base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	return absolutize(icon, base)
}

func (r *HTTPResolver) debug(msg, pageURL string, err error) {
	if r.Log == nil {
		return
	}
	fields := []zap.Field{zap.String("url", pageURL)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.Log.Debug(msg, fields...)
}

// Fallback derives an icon URL from the page URL alone: the origin's
// /favicon.ico, or a placeholder when the origin cannot be parsed.
func Fallback(pageURL string) string {
	u, err := url.Parse(ensureScheme(pageURL))
	if err != nil || u.Host == "" {
		return PlaceholderIcon
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

func ensureScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// findIcon walks the parse tree and returns the highest-priority icon
// reference, or "" when the markup has none.
func findIcon(doc *html.Node) string {
	best := len(relPriority) + 1 // og:image ranks below every rel hint
	found := ""

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				rel := strings.ToLower(strings.TrimSpace(attr(n, "rel")))
				href := strings.TrimSpace(attr(n, "href"))
				if href != "" {
					for i, want := range relPriority {
						if rel == want && i < best {
							best = i
							found = href
							break
						}
					}
				}
			case "meta":
				if strings.EqualFold(attr(n, "property"), "og:image") {
					if content := strings.TrimSpace(attr(n, "content")); content != "" && best > len(relPriority) {
						best = len(relPriority)
						found = content
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// absolutize resolves icon against the page origin: protocol-relative
// references take the page scheme, rooted paths take the origin, and
// bare names are joined under the origin.
func absolutize(icon string, base *url.URL) string {
	if strings.HasPrefix(icon, "http://") || strings.HasPrefix(icon, "https://") {
		return icon
	}
	origin := base.Scheme + "://" + base.Host
	switch {
	case strings.HasPrefix(icon, "//"):
		return base.Scheme + ":" + icon
	case strings.HasPrefix(icon, "/"):
		return origin + icon
	default:
		return origin + "/" + icon
	}
}

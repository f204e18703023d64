package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/waftester/mutaprobe/pkg/probe"
)

// linkAttrs maps elements to the attribute holding a URL.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"area":   "href",
	"form":   "action",
	"script": "src",
	"iframe": "src",
	"frame":  "src",
	"img":    "src",
}

// extractLinks returns the URLs a response references that share scope's
// host, in first-seen order. Header references come first.
func extractLinks(resp *probe.Response, scope *url.URL) []string {
	if resp == nil || scope == nil {
		return nil
	}
	base := scope
	if resp.URL != "" {
		if u, err := url.Parse(resp.URL); err == nil {
			base = u
		}
	}

	var links []string
	seen := make(map[string]bool)
	add := func(raw string) {
		resolved := resolveURL(raw, base)
		if resolved == "" || seen[resolved] || !sameHost(resolved, scope) {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	}

	for _, hdr := range []string{"Location", "Content-Location"} {
		if v := resp.Get(hdr); v != "" {
			add(v)
		}
	}
	if refresh := resp.Get("Refresh"); refresh != "" {
		add(parseRefreshURL(refresh))
	}

	if !strings.Contains(resp.ContentType(), "html") && resp.ContentType() != "" {
		return links
	}

	z := html.NewTokenizer(bytes.NewReader(resp.Body))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return links
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		t := z.Token()
		attr, ok := linkAttrs[t.Data]
		if !ok {
			continue
		}
		if v := getAttr(t, attr); v != "" {
			add(v)
		}
	}
}

func getAttr(t html.Token, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// parseRefreshURL extracts the URL from a Refresh header value.
// Format: "5; url=https://example.com"
func parseRefreshURL(val string) string {
	lower := strings.ToLower(val)
	idx := strings.Index(lower, "url=")
	if idx < 0 {
		return ""
	}
	u := strings.TrimSpace(val[idx+4:])
	return strings.Trim(u, "'\"")
}

func resolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	// Skip special URLs
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}

func sameHost(raw string, scope *url.URL) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, scope.Host)
}

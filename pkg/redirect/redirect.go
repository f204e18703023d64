// Package redirect decides whether a response redirects the client to one
// of a set of off-site test URLs.
//
// The decision is an ordered list of signals evaluated cheapest first;
// evaluation stops at the first signal that matches. Test URLs are always
// compared as literal prefixes.
package redirect

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/waftester/mutaprobe/pkg/htmldoc"
	"github.com/waftester/mutaprobe/pkg/probe"
	"github.com/waftester/mutaprobe/pkg/regexcache"
)

// Document exposes the meta-refresh directives of a parsed body.
type Document interface {
	MetaRefreshDirectives() []string
}

// ParserFunc parses a response body. An error means the content type has
// no parser; the meta-refresh signal then reports no match.
type ParserFunc func(resp *probe.Response) (Document, error)

// HTMLParser is the default ParserFunc backed by htmldoc.
func HTMLParser(resp *probe.Response) (Document, error) {
	doc, err := htmldoc.Parse(resp)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Signal is one redirect check.
type Signal struct {
	Name  string
	Match func(resp *probe.Response, testURLs []string) bool
}

// Signal names, in evaluation order.
const (
	SignalLocation    = "location-header"
	SignalRefresh     = "refresh-header"
	SignalMetaRefresh = "meta-refresh"
	SignalScript      = "script"
)

var (
	metaURLRe = regexp.MustCompile(`(?is).*?;\s*URL\s*=\s*(.*)`)
	scriptRe  = regexp.MustCompile(`(?is)< *?script.*?>(.*?)< *?/ *?script *?>`)
)

// scriptRedirectFormat matches a JavaScript location assignment that
// reaches a test URL; %s is the quoted test URL.
const scriptRedirectFormat = `(window\.location|location\.).*(%s)`

// Signals returns the default ordered signal list.
func Signals(parse ParserFunc) []Signal {
	return []Signal{
		{Name: SignalLocation, Match: LocationHeader},
		{Name: SignalRefresh, Match: RefreshHeader},
		{Name: SignalMetaRefresh, Match: MetaRefresh(parse)},
		{Name: SignalScript, Match: ScriptRedirect},
	}
}

// LocationHeader matches a Location or URI header starting with a test URL.
func LocationHeader(resp *probe.Response, testURLs []string) bool {
	for name, values := range resp.Header {
		if !strings.EqualFold(name, "location") && !strings.EqualFold(name, "uri") {
			continue
		}
		for _, v := range values {
			if hasAnyPrefix(v, testURLs) {
				return true
			}
		}
	}
	return false
}

// RefreshHeader matches a Refresh header whose value, split once on "=",
// has a second part starting with a test URL.
func RefreshHeader(resp *probe.Response, testURLs []string) bool {
	for _, v := range resp.Values("refresh") {
		_, target, ok := strings.Cut(v, "=")
		if ok && hasAnyPrefix(target, testURLs) {
			return true
		}
	}
	return false
}

// MetaRefresh matches a <meta http-equiv="refresh"> target starting with a
// test URL. A body the parser rejects counts as no match.
func MetaRefresh(parse ParserFunc) func(*probe.Response, []string) bool {
	return func(resp *probe.Response, testURLs []string) bool {
		if parse == nil {
			return false
		}
		doc, err := parse(resp)
		if err != nil || doc == nil {
			return false
		}
		for _, directive := range doc.MetaRefreshDirectives() {
			m := metaURLRe.FindStringSubmatch(directive)
			if m == nil {
				continue
			}
			target := strings.Trim(strings.TrimSpace(m[1]), `'"`)
			if hasAnyPrefix(target, testURLs) {
				return true
			}
		}
		return false
	}
}

// ScriptRedirect matches a location assignment to a test URL inside a
// <script> block. Statements are split on newlines, then on ";".
func ScriptRedirect(resp *probe.Response, testURLs []string) bool {
	blocks := scriptRe.FindAllSubmatch(resp.Body, -1)
	if len(blocks) == 0 {
		return false
	}

	patterns := make([]*regexp.Regexp, 0, len(testURLs))
	for _, u := range testURLs {
		re, err := regexcache.WithLiteral(scriptRedirectFormat, u)
		if err != nil {
			continue
		}
		patterns = append(patterns, re)
	}

	for _, block := range blocks {
		for _, line := range strings.Split(string(block[1]), "\n") {
			for _, stmt := range strings.Split(line, ";") {
				for _, re := range patterns {
					if re.MatchString(stmt) {
						return true
					}
				}
			}
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Classifier evaluates the signal list.
type Classifier struct {
	signals []Signal
	logger  *slog.Logger
}

// Option configures a Classifier.
type Option func(*classifierOptions)

type classifierOptions struct {
	parse  ParserFunc
	logger *slog.Logger
}

// WithParser replaces the HTML parser used by the meta-refresh signal.
func WithParser(p ParserFunc) Option {
	return func(o *classifierOptions) { o.parse = p }
}

// WithLogger sets a custom structured logger for the classifier.
func WithLogger(l *slog.Logger) Option {
	return func(o *classifierOptions) { o.logger = l }
}

// New returns a Classifier with the default signals.
func New(opts ...Option) *Classifier {
	o := classifierOptions{parse: HTMLParser, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Classifier{signals: Signals(o.parse), logger: o.logger}
}

// IsRedirect reports whether resp redirects to one of testURLs.
func (c *Classifier) IsRedirect(resp *probe.Response, testURLs []string) bool {
	_, ok := c.Evaluate(resp, testURLs)
	return ok
}

// Evaluate is IsRedirect that also names the matching signal.
func (c *Classifier) Evaluate(resp *probe.Response, testURLs []string) (string, bool) {
	if resp == nil || len(testURLs) == 0 {
		return "", false
	}
	for _, s := range c.signals {
		if s.Match(resp, testURLs) {
			c.logger.Debug("redirect signal matched",
				slog.String("signal", s.Name),
				slog.String("id", resp.ID))
			return s.Name, true
		}
	}
	return "", false
}

// Remediation returns advice for a redirect found by the named signal.
func Remediation(signal string) string {
	remediations := map[string]string{
		SignalLocation:    "Validate redirect URLs against an allowlist of trusted domains. Never reflect user input directly to the Location header.",
		SignalRefresh:     "Validate URLs placed in the Refresh header against an allowlist of trusted domains.",
		SignalMetaRefresh: "Validate URLs in meta refresh. Use Content Security Policy.",
		SignalScript:      "Validate URLs before JavaScript redirect. Use CSP to restrict script execution.",
	}

	if r, ok := remediations[signal]; ok {
		return r
	}
	return "Validate all redirect URLs against a strict allowlist of trusted domains."
}

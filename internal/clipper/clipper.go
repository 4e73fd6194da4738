// Package clipper imports previous school menus from a web page so they can
// be fed back into the generation prompt.
package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"school-meal-planner/internal/llm"

	"github.com/PuerkitoBio/goquery"
)

// maxPromptChars bounds the page text sent to the model.
const maxPromptChars = 8000

var (
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("only http and https URLs can be imported")
	// ErrForbiddenDestination is returned when a URL resolves to a loopback,
	// private or link-local address.
	ErrForbiddenDestination = errors.New("destination address is not allowed")
)

// maxRedirects matches net/http's default policy.
const maxRedirects = 10

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Clipper handles fetching and extracting menus from URLs.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// NewClipper creates a new Clipper instance. textGen may be nil, in which case
// Import returns the cleaned page text as-is. The HTTP client only connects
// to public addresses, redirects included.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		httpClient: newPublicClient(),
		textGen:    textGen,
	}
}

// newPublicClient checks every dialed address, so a hostname that resolves
// to an internal address or a redirect to one is refused as well.
func newPublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: refuseInternal,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return checkScheme(req.URL)
		},
	}
}

func refuseInternal(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenDestination, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !publicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrForbiddenDestination, host)
	}
	return nil
}

func publicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

func checkScheme(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return nil
}

type extractedMenus struct {
	Menus []string `json:"menus"`
}

// Import fetches url and returns text suitable for the previous-menus field:
// one dish per line when a model is available, the cleaned page text otherwise.
func (c *Clipper) Import(ctx context.Context, pageURL string) (string, error) {
	content, err := c.FetchMenuText(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content: %w", err)
	}
	if c.textGen == nil {
		return content, nil
	}

	if r := []rune(content); len(r) > maxPromptChars {
		content = string(r[:maxPromptChars])
	}

	prompt := fmt.Sprintf(`
당신은 학교 급식 식단표에서 메뉴 이름을 추출하는 전문가입니다. 아래 텍스트에서 음식 메뉴 이름만 추출하세요.
결과는 반드시 다음 구조의 JSON 객체로만 반환하세요:
{"menus": ["메뉴 1", "메뉴 2", ...]}

텍스트:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedMenus
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	var menus []string
	for _, m := range extracted.Menus {
		if m = strings.TrimSpace(m); m != "" {
			menus = append(menus, m)
		}
	}
	return strings.Join(menus, "\n"), nil
}

// FetchMenuText downloads url and returns the visible body text with
// navigation, scripts and ads removed and blank lines collapsed.
func (c *Clipper) FetchMenuText(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if err := checkScheme(u); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Table cells and list items carry the dishes on most menu boards; keep
	// them on their own lines.
	doc.Find("td, th, li, br, p, div, h1, h2, h3").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return collapseLines(doc.Find("body").Text()), nil
}

func collapseLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts information from HTML content.
// It identifies links, forms, scripts, images, and metadata.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains all information extracted from an HTML page.
//
// Design decision: We return a comprehensive result struct rather than
// multiple methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Text is the concatenated text content of the page, keyword
	// matching runs over its lowercase form.
	Text string

	// AnchorCount counts every <a> element, with or without href.
	AnchorCount int

	// RawHrefs holds the href attribute values exactly as written.
	RawHrefs []string

	// Links contains the resolved absolute URLs of all hrefs.
	Links []string

	// InternalLinks are resolved links pointing at the same host.
	InternalLinks []string

	// FormCount counts <form> elements.
	FormCount int

	// HasPasswordInput reports whether an <input type="password"> exists.
	HasPasswordInput bool

	// ScriptCount counts <script> elements.
	ScriptCount int

	// InlineScripts holds the body of each inline <script>.
	InlineScripts []string

	// ImageSrcs holds the src attribute of every <img>, which may be
	// empty or a data: URI.
	ImageSrcs []string

	// MetaTags maps meta tag names to their content.
	MetaTags map[string]string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts all relevant information.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		RawHrefs:      make([]string, 0),
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
		InlineScripts: make([]string, 0),
		ImageSrcs:     make([]string, 0),
		MetaTags:      make(map[string]string),
	}

	var textContent strings.Builder

	// Walk the DOM tree
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			p.processElement(n, result)
		case html.TextNode:
			textContent.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	result.Text = textContent.String()
	return result, nil
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		result.AnchorCount++
		if href := getAttr(n, "href"); href != "" {
			result.RawHrefs = append(result.RawHrefs, href)
			resolved := p.resolveURL(href)
			if resolved != "" {
				result.Links = append(result.Links, resolved)
				p.classifyLink(resolved, result)
			}
		}

	case "form":
		result.FormCount++

	case "input":
		if strings.EqualFold(getAttr(n, "type"), "password") {
			result.HasPasswordInput = true
		}

	case "script":
		result.ScriptCount++
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.InlineScripts = append(result.InlineScripts, n.FirstChild.Data)
		}

	case "img":
		result.ImageSrcs = append(result.ImageSrcs, getAttr(n, "src"))

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			name = getAttr(n, "property") // OpenGraph uses property
		}
		content := getAttr(n, "content")
		if name != "" && content != "" {
			result.MetaTags[strings.ToLower(name)] = content
		}
	}
}

// resolveURL resolves a relative URL against the base URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Allows proper link classification
//  3. Reduces ambiguity in results
func (p *Parser) resolveURL(href string) string {
	if href == "" {
		return ""
	}

	// Handle special cases
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	// Parse and resolve
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	return resolved.String()
}

// classifyLink records same-host links as internal subpage candidates.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}

	if strings.EqualFold(u.Host, p.baseURL.Host) {
		result.InternalLinks = append(result.InternalLinks, link)
	}
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

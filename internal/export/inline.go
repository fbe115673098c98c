package export

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Stylesheets returns the absolute http(s) hrefs of every
// link[rel=stylesheet] in markup, in document order.
func Stylesheets(markup string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	var hrefs []string
	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		if !isStylesheet(s) {
			return
		}
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		hrefs = append(hrefs, u.String())
	})
	return hrefs, nil
}

func isStylesheet(s *goquery.Selection) bool {
	rel, _ := s.Attr("rel")
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		if r == "stylesheet" {
			return true
		}
	}
	return false
}

// InlineStyles wipes the document head and replaces it with one <style>
// block holding fetched followed by the text of every existing <style>
// element. Body content is left untouched.
func InlineStyles(markup string, fetched []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	var css strings.Builder
	for _, sheet := range fetched {
		css.WriteString(sheet)
		css.WriteString("\n")
	}
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		css.WriteString(s.Text())
		css.WriteString("\n")
	})

	head := doc.Find("head").First()
	head.Empty()
	head.AppendHtml("<style></style>")
	head.Find("style").SetText(css.String())

	return goquery.OuterHtml(doc.Selection)
}

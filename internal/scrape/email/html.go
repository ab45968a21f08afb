package email_scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"gigtracker-engine/internal/scrape/util"
)

// Line-level elements end a line; section-level elements end a block (blank line), which is
// what ExtractUpworkJobs splits on.
const (
	lineElements    = "p,div,li,tr,td,th,dd,dt,h1,h2,h3,h4,h5,h6"
	sectionElements = "table,hr,section,article,blockquote"

	sectionMark = "\x1e"
)

var (
	reSpaceRun   = regexp.MustCompile(`[\s\x{00a0}]+`)
	reLineRun    = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
	reSectionRun = regexp.MustCompile(`\s*\x1e[\s\x1e]*`)
)

// HTMLToText renders an HTML alert mail as plain text. Links are kept as a URL line after the
// anchor text so each job block carries its URL.
func HTMLToText(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("head,script,style,noscript").Remove()
	for _, n := range doc.Nodes {
		collapseSpace(n)
	}

	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(textNode("\n"))
	})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lh := strings.ToLower(href)
		if !strings.HasPrefix(lh, "http://") && !strings.HasPrefix(lh, "https://") {
			return
		}
		if util.CleanText(a.Text()) == href {
			return
		}
		a.AfterNodes(textNode("\n" + href + "\n"))
	})

	doc.Find(lineElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterNodes(textNode("\n"))
	})
	doc.Find(sectionElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterNodes(textNode(sectionMark))
	})

	out := reLineRun.ReplaceAllString(doc.Text(), "\n")
	out = reSectionRun.ReplaceAllString(out, "\n\n")
	return util.NormalizeLines(out), nil
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func collapseSpace(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = reSpaceRun.ReplaceAllString(n.Data, " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collapseSpace(c)
	}
}

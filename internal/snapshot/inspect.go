// Package snapshot inspects captured page markup.
//
// The render driver uses it after serialization to tell a clean capture from
// a degraded one: the output container may be missing entirely, or may still
// carry the client renderer's loading sentinel when the readiness wait timed
// out.
package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Report summarises one captured snapshot.
type Report struct {
	// Title is the document <title> text, if any.
	Title string

	// ContainerFound reports whether the output container element exists.
	ContainerFound bool

	// ContainerText is the container's trimmed text content.
	ContainerText string

	// SentinelVisible reports whether the loading sentinel is still present
	// in the container text (case-insensitive substring).
	SentinelVisible bool
}

// Inspect parses captured markup and checks the output container identified
// by containerID against the loading sentinel.
func Inspect(markup []byte, containerID, sentinel string) (*Report, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse: %w", err)
	}

	rep := &Report{Title: findTitle(doc)}

	if node := findByID(doc, containerID); node != nil {
		rep.ContainerFound = true
		rep.ContainerText = strings.TrimSpace(collectText(node))
		if sentinel != "" {
			rep.SentinelVisible = strings.Contains(
				strings.ToLower(rep.ContainerText), strings.ToLower(sentinel))
		}
	}

	return rep, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return ""
		}
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(collectText(c))
	}
	return b.String()
}

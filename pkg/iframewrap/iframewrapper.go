// Package iframewrap renders a standalone preview page around a generated
// iframe snippet.
package iframewrap

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNotIframe = errors.New("snippet must be a single iframe element")

type Options struct {
	// URL is shown in the header and linked.
	URL            string
	ContainerStyle string
}

// WrapHTML places snippet inside a styled preview container. The snippet is
// written as is, so it must parse as exactly one <iframe> element.
func WrapHTML(snippet string, o Options) (string, error) {
	if err := checkSnippet(snippet); err != nil {
		return "", err
	}

	url := html.EscapeString(o.URL)
	parent := fmt.Sprintf(parentTemplate,
		url,
		url,
		url,
		html.EscapeString(o.ContainerStyle),
		snippet,
	)

	return parent, nil
}

func checkSnippet(snippet string) error {
	nodes, err := html.ParseFragment(strings.NewReader(snippet), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to parse snippet: %w", err)
	}

	var elements []*html.Node
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			elements = append(elements, n)
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return ErrNotIframe
			}
		}
	}

	if len(elements) != 1 || elements[0].DataAtom != atom.Iframe {
		return ErrNotIframe
	}

	return nil
}

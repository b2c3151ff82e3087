// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/taibuivan/espy/internal/platform/apperr"
)

// ParseHTML parses a page body.
func ParseHTML(body []byte) (*html.Node, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("web: parse html: %w", err))
	}
	return root, nil
}

// FindByClass returns the first element under root carrying class, or nil.
func FindByClass(root *html.Node, class string) *html.Node {
	for node := range root.Descendants() {
		if hasClass(node, class) {
			return node
		}
	}
	return nil
}

// FindAllTags returns every element under root with the given tag name.
func FindAllTags(root *html.Node, tag string) []*html.Node {
	var found []*html.Node
	for node := range root.Descendants() {
		if node.Type == html.ElementNode && node.Data == tag {
			found = append(found, node)
		}
	}
	return found
}

// FindTag returns the first element under root with the given tag name, or nil.
func FindTag(root *html.Node, tag string) *html.Node {
	for node := range root.Descendants() {
		if node.Type == html.ElementNode && node.Data == tag {
			return node
		}
	}
	return nil
}

// Text concatenates the text under node and trims surrounding space.
func Text(node *html.Node) string {
	var builder strings.Builder
	for child := range node.Descendants() {
		if child.Type == html.TextNode {
			builder.WriteString(child.Data)
		}
	}
	return strings.TrimSpace(builder.String())
}

// Attr returns the value of an attribute, or "".
func Attr(node *html.Node, key string) string {
	for _, attribute := range node.Attr {
		if attribute.Key == key {
			return attribute.Val
		}
	}
	return ""
}

func hasClass(node *html.Node, class string) bool {
	if node.Type != html.ElementNode {
		return false
	}
	return slices.Contains(strings.Fields(Attr(node, "class")), class)
}

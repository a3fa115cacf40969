package web

import (
	"golang.org/x/net/html"
)

// LinkHref returns the href anchor text associated with the given html node.
// It returns the empty string if the node is not a link.
func LinkHref(n *html.Node) string {
	if n.Type != html.ElementNode || n.Data != "a" {
		return ""
	}

	for _, a := range n.Attr {
		if a.Key == "href" {
			return a.Val
		}
	}

	return ""
}

// ForEachNode applies a function to the given node and each of its
// descendants, in document order.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	var iter func(n *html.Node) error
	iter = func(n *html.Node) error {
		err := fn(n)
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			err := iter(c)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return iter(node)
}

// ForEachLink applies a function to each `a href` element in the given html
// node and its descendants.
func ForEachLink(node *html.Node, fn func(n *html.Node) error) error {
	return ForEachNode(node, func(n *html.Node) error {
		if LinkHref(n) != "" {
			return fn(n)
		}
		return nil
	})
}

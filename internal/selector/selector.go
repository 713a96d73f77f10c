// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package selector builds and resolves the element paths stored in field
// mappings.
//
// A path is a chain of steps joined by ">". Each step is a lowercase tag
// name, optionally followed by ":eq(i)" where i is the element's index
// among its parent's element children (omitted when zero). Walking stops
// at the first ancestor carrying an id, which becomes a leading "#id"
// step; without such an ancestor the path starts at the root "html".
//
//	#hero>h1
//	html>body:eq(1)>div>p:eq(2)
package selector

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// AnchorPrefix starts every id synthesized by Anchor.
const AnchorPrefix = "lw-"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var stepRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*)(?::eq\((\d+)\))?$`)

// Path returns the selector path of element n. It returns "" when n is
// not an element.
func Path(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	var steps []string
	for el := n; el != nil && el.Type == html.ElementNode; el = el.Parent {
		if id := ID(el); id != "" {
			steps = append(steps, "#"+id)
			break
		}
		step := el.Data
		if i := index(el); i > 0 {
			step += ":eq(" + strconv.Itoa(i) + ")"
		}
		steps = append(steps, step)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, ">")
}

// Anchor returns "#id" for element n, first giving it a fresh id when it
// has none. Generated ids are not checked for uniqueness.
func Anchor(n *html.Node) string {
	if id := ID(n); id != "" {
		return "#" + id
	}
	id := NewID()
	n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
	return "#" + id
}

// NewID returns AnchorPrefix followed by 8 random base36 characters.
func NewID() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return AnchorPrefix + string(b)
}

// ID returns the id attribute of n, or "".
func ID(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" {
			return a.Val
		}
	}
	return ""
}

// index is the position of n among its parent's element children.
func index(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}

// Translate rewrites a path into an equivalent CSS selector: "#id"
// becomes an attribute match, "tag:eq(i)" becomes "tag:nth-child(i+1)"
// and a bare tag is pinned to the first child. A leading "html" step is
// left as is. Mixed-case SVG tags such as foreignObject match by position
// only, since CSS type selectors are lowercased.
func Translate(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	var parts []string
	rest := path
	if strings.HasPrefix(rest, "#") {
		id, tail, _ := strings.Cut(rest[1:], ">")
		if id == "" {
			return "", fmt.Errorf("empty id in %q", path)
		}
		parts = append(parts, `[id="`+escape(id)+`"]`)
		rest = tail
		if rest == "" {
			return parts[0], nil
		}
	}

	for i, step := range strings.Split(rest, ">") {
		m := stepRe.FindStringSubmatch(step)
		if m == nil {
			return "", fmt.Errorf("bad step %q in %q", step, path)
		}
		if i == 0 && len(parts) == 0 && m[1] == "html" && m[2] == "" {
			parts = append(parts, "html")
			continue
		}
		n := 0
		if m[2] != "" {
			n, _ = strconv.Atoi(m[2])
		}
		tag := m[1]
		if tag != strings.ToLower(tag) {
			tag = "*"
		}
		parts = append(parts, tag+":nth-child("+strconv.Itoa(n+1)+")")
	}
	return strings.Join(parts, " > "), nil
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Compile turns a stored path into a matcher. Paths that do not follow
// the builder's grammar are tried as plain CSS so hand-written selectors
// keep working.
func Compile(path string) (cascadia.Sel, error) {
	if css, err := Translate(path); err == nil {
		return cascadia.Parse(css)
	}
	sel, err := cascadia.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", path, err)
	}
	return sel, nil
}

// Resolve returns the first element under doc matched by path, or nil
// when the path is unusable or matches nothing.
func Resolve(doc *html.Node, path string) *html.Node {
	sel, err := Compile(path)
	if err != nil {
		return nil
	}
	return cascadia.Query(doc, sel)
}

// Elements lists every element under doc in document order.
func Elements(doc *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(doc)
	return out
}

// NodeAt returns the i-th element of doc in document order, counting from
// zero as document.querySelectorAll("*") does. Returns nil when out of range.
func NodeAt(doc *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	els := Elements(doc)
	if i >= len(els) {
		return nil
	}
	return els[i]
}

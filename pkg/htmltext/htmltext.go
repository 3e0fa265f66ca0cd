// Package htmltext は、goquery の選択範囲からテキストを取り出すヘルパーです。
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// isHiddenContainer はテキストとして扱わない要素 (script, style, template) かどうかを判定します。
func isHiddenContainer(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template:
		return true
	}
	return false
}

// walkText は n 以下のテキストノードを文書順に visit へ渡します。
func walkText(n *html.Node, visit func(string)) {
	if isHiddenContainer(n) {
		return
	}
	if n.Type == html.TextNode {
		visit(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, visit)
	}
}

// Flatten は選択範囲内のテキストノードを区切り文字なしで連結します。
// 改行や空白はそのまま保持されます。
func Flatten(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		walkText(n, func(t string) { b.WriteString(t) })
	}
	return b.String()
}

// Stripped は各テキストノードの前後の空白を除去し、空でないものを区切り文字なしで連結します。
func Stripped(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		walkText(n, func(t string) { b.WriteString(strings.TrimSpace(t)) })
	}
	return b.String()
}

// Is は選択範囲の先頭要素が指定したタグかどうかを判定します。
func Is(s *goquery.Selection, tags ...atom.Atom) bool {
	if s.Length() == 0 {
		return false
	}
	n := s.Get(0)
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range tags {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matcher はページのテキストから1つのフィールド値を取り出す戦略です。
type Matcher interface {
	Match(text string) (string, bool)
}

// patternMatcher は正規表現の一致箇所を整形・検証して返す Matcher です。
type patternMatcher struct {
	re     *regexp.Regexp
	group  int
	clean  func(string) string
	accept func(string) bool
}

func (m patternMatcher) Match(text string) (string, bool) {
	sub := m.re.FindStringSubmatch(foldSpaces(text))
	if sub == nil || m.group >= len(sub) {
		return "", false
	}
	v := sub[m.group]
	if m.clean != nil {
		v = m.clean(v)
	}
	if m.accept != nil && !m.accept(v) {
		return "", false
	}
	return v, v != ""
}

// FirstMatch は matchers を順に試し、最初に成功した値を返します。
// どれも一致しない場合は空文字列です。
func FirstMatch(text string, matchers []Matcher) string {
	for _, m := range matchers {
		if v, ok := m.Match(text); ok {
			return v
		}
	}
	return ""
}

const (
	minPhoneLength   = 6
	minServiceLength = 3

	streetTypes = `(?:St|Street|Rd|Road|Ave|Avenue|Dr|Drive|Lane|Ln|Crescent|Cres|Court|Ct|Pl|Place|Bvd|Boulevard)`
	stateCodes  = `(?:QLD|NSW|VIC|WA|SA|NT|TAS|ACT)`
)

var (
	phoneDisallowed = regexp.MustCompile(`[^\d\s()\-+]`)
	markdownLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// PhoneMatchers は電話番号の抽出戦略です。"Call" に続く番号を優先し、次に豪州の固定電話の形を探します。
var PhoneMatchers = []Matcher{
	patternMatcher{
		re:     regexp.MustCompile(`(?i)Call\s+([\d\s()\-+]+)`),
		group:  1,
		clean:  cleanPhone,
		accept: longerThan(minPhoneLength - 1),
	},
	patternMatcher{
		re:     regexp.MustCompile(`(?i)[(\s]?0[2-9][\d\s()\-]{7,}`),
		group:  0,
		clean:  cleanPhone,
		accept: longerThan(minPhoneLength - 1),
	},
}

// EmailMatchers はメールアドレスの抽出戦略です。
var EmailMatchers = []Matcher{
	patternMatcher{
		re: regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`),
	},
}

// AddressMatchers は豪州の住所 (番地 + 通り種別 + 地区 + 州コード + 郵便番号) の抽出戦略です。
// 1つ目は Unit/Suite/No/Lot で始まる住所のみを対象とします。
var AddressMatchers = []Matcher{
	patternMatcher{
		re:    regexp.MustCompile(`(?i)((?:Unit|Suite|No|Lot)[\s\d\w\-]*,\s*\d+[\w\s.]+` + streetTypes + `\s+[\w\s]+` + stateCodes + `\s+\d{4})`),
		group: 1,
		clean: collapseSpaces,
	},
	patternMatcher{
		re:    regexp.MustCompile(`(?i)(\d+[\s\w\-]*` + streetTypes + `[\w\s]+` + stateCodes + `\s+\d{4})`),
		group: 1,
		clean: collapseSpaces,
	},
}

// foldSpaces は非ASCIIの空白 (&nbsp; 由来の U+00A0 など) を半角スペースに置き換えます。
// RE2 の \s はASCIIの空白にしか一致しないためです。
func foldSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func cleanPhone(s string) string {
	return collapseSpaces(phoneDisallowed.ReplaceAllString(s, ""))
}

// collapseSpaces は連続する空白 (改行を含む) を1つの半角スペースにまとめます。
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func longerThan(n int) func(string) bool {
	return func(s string) bool { return utf8.RuneCountInString(s) > n }
}

// cleanServiceName は "[表示名](url)" 形式のリンク記法から表示名だけを残します。
func cleanServiceName(s string) string {
	return markdownLink.ReplaceAllString(s, "$1")
}

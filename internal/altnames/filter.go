package altnames

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// LanguagePrecedence lists accepted language codes, most preferred first.
var LanguagePrecedence = []string{"zh-Hans", "zh-CN", "cnm", "zh", "zho", "chi", "zh-Hant", "zh-TW", "ja"}

// Fallback ranks sort after every listed code.
var (
	rankAbsent      = len(LanguagePrecedence) + 1
	rankOtherZh     = len(LanguagePrecedence) + 2
	rankUnspecified = len(LanguagePrecedence) + 3
)

var precedenceIndex = func() map[string]int {
	m := make(map[string]int, len(LanguagePrecedence))
	for i, code := range LanguagePrecedence {
		m[code] = i
	}
	return m
}()

// chineseRanges covers the CJK unified ideographs, extensions A through I,
// compatibility ideographs and the radical blocks.
var chineseRanges = [][2]rune{
	{0x4E00, 0x9FFF},
	{0x3400, 0x4DBF},
	{0x20000, 0x2A6DF},
	{0x2A700, 0x2B73A},
	{0x2B740, 0x2B81D},
	{0x2B820, 0x2CEA1},
	{0x2CEB0, 0x2EBE0},
	{0x30000, 0x3134A},
	{0x31350, 0x323AF},
	{0x2EBF0, 0x2EE5D},
	{0x2F00, 0x2FD5},
	{0x2E80, 0x2EF3},
	{0xF900, 0xFAD9},
	{0x2F800, 0x2FA1D},
}

// Chinese is the merged range table behind IsChinese.
var Chinese = buildRangeTable(chineseRanges)

func buildRangeTable(ranges [][2]rune) *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, 0, len(ranges))
	for _, r := range ranges {
		t := &unicode.RangeTable{}
		if r[1] <= 0xFFFF {
			t.R16 = []unicode.Range16{{Lo: uint16(r[0]), Hi: uint16(r[1]), Stride: 1}}
		} else {
			t.R32 = []unicode.Range32{{Lo: uint32(r[0]), Hi: uint32(r[1]), Stride: 1}}
		}
		tables = append(tables, t)
	}
	return rangetable.Merge(tables...)
}

// IsChinese reports whether text is non-empty and every rune falls in the
// Chinese ideograph ranges.
func IsChinese(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.Is(Chinese, r) {
			return false
		}
	}
	return true
}

// NotColloquialOrHistoric drops rows explicitly flagged colloquial or historic.
func NotColloquialOrHistoric(rec AlternateName) bool {
	return !rec.Colloquial.True() && !rec.Historic.True()
}

// AcceptedLanguage keeps listed codes, any "zh-" code, and rows with no code.
func AcceptedLanguage(rec AlternateName) bool {
	if rec.Language == "" {
		return true
	}
	if _, ok := precedenceIndex[rec.Language]; ok {
		return true
	}
	return strings.HasPrefix(rec.Language, "zh-")
}

// PassesScriptGate requires Chinese text for the ambiguous "ja" and absent
// codes. Every other code passes.
func PassesScriptGate(rec AlternateName) bool {
	if rec.Language == "ja" || rec.Language == "" {
		return IsChinese(rec.Name)
	}
	return true
}

// Precedence ranks a language code; lower is preferred.
func Precedence(language string) int {
	if idx, ok := precedenceIndex[language]; ok {
		return idx
	}
	switch {
	case language == "":
		return rankAbsent
	case strings.HasPrefix(language, "zh-"):
		return rankOtherZh
	default:
		return rankUnspecified
	}
}

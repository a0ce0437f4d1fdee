package altnames

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("1620985\t1816670\tzh\t北京\t1\t\t\t\t\t")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.GeonameID != 1816670 || rec.Language != "zh" || rec.Name != "北京" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Preferred != FlagTrue || rec.Short != FlagAbsent || rec.Colloquial != FlagAbsent || rec.Historic != FlagAbsent {
		t.Fatalf("unexpected flags %+v", rec)
	}
}

func TestParseLineRejectsMalformedRows(t *testing.T) {
	cases := map[string]string{
		"too few columns": "1\t2\tzh\t北京",
		"bad id":          "1\tabc\tzh\t北京\t\t\t\t",
		"bad flag":        "1\t2\tzh\t北京\tyes\t\t\t",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseLine(line); err == nil {
				t.Fatalf("expected error for %q", line)
			}
		})
	}
}

func TestParseLineAcceptsExplicitFalse(t *testing.T) {
	rec, err := ParseLine("1\t2\tzh\t北京\t0\t0\t0\t0")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.Preferred != FlagFalse || !NotColloquialOrHistoric(rec) {
		t.Fatalf("expected explicit false flags to pass, got %+v", rec)
	}
}

func TestNotColloquialOrHistoric(t *testing.T) {
	cases := []struct {
		rec  AlternateName
		want bool
	}{
		{AlternateName{}, true},
		{AlternateName{Colloquial: FlagFalse, Historic: FlagFalse}, true},
		{AlternateName{Colloquial: FlagTrue}, false},
		{AlternateName{Historic: FlagTrue}, false},
	}
	for _, tc := range cases {
		if got := NotColloquialOrHistoric(tc.rec); got != tc.want {
			t.Fatalf("NotColloquialOrHistoric(%+v) = %v, want %v", tc.rec, got, tc.want)
		}
	}
}

func TestAcceptedLanguage(t *testing.T) {
	for _, code := range append([]string{"", "zh-HK", "zh-SG", "zh-Latn-pinyin"}, LanguagePrecedence...) {
		if !AcceptedLanguage(AlternateName{Language: code}) {
			t.Fatalf("expected %q to be accepted", code)
		}
	}
	for _, code := range []string{"en", "ko", "yue", "zh_TW", "ZH", "link", "post"} {
		if AcceptedLanguage(AlternateName{Language: code}) {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}

func TestScriptGate(t *testing.T) {
	cases := []struct {
		name string
		rec  AlternateName
		want bool
	}{
		{"ja kana", AlternateName{Language: "ja", Name: "こんにちは"}, false},
		{"ja kanji", AlternateName{Language: "ja", Name: "日本"}, true},
		{"absent latin", AlternateName{Name: "Paris"}, false},
		{"absent hanzi", AlternateName{Name: "巴黎"}, true},
		{"absent mixed", AlternateName{Name: "巴黎 Paris"}, false},
		{"absent empty", AlternateName{}, false},
		{"zh latin passes", AlternateName{Language: "zh", Name: "Beijing"}, true},
		{"zh-TW passes", AlternateName{Language: "zh-TW", Name: "臺北"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PassesScriptGate(tc.rec); got != tc.want {
				t.Fatalf("PassesScriptGate(%+v) = %v, want %v", tc.rec, got, tc.want)
			}
		})
	}
}

func TestIsChineseRanges(t *testing.T) {
	inside := []rune{0x4E00, 0x9FFF, 0x3400, 0x20000, 0x2A6DF, 0x2B740, 0x30000, 0x323AF, 0x2EBF0, 0x2F00, 0x2E80, 0xF900, 0x2FA1D}
	for _, r := range inside {
		if !IsChinese(string(r)) {
			t.Fatalf("expected U+%04X to be Chinese", r)
		}
	}
	outside := []rune{'A', 0x3041, 0x30A2, 0xAC00, 0x4DC0, 0x2FD6, 0x2EF4, 0xFADA, 0x2A6E0, 0x2FA1E, 0x3000}
	for _, r := range outside {
		if IsChinese(string(r)) {
			t.Fatalf("expected U+%04X to be outside the Chinese ranges", r)
		}
	}
}

func TestPrecedence(t *testing.T) {
	for i, code := range LanguagePrecedence {
		if got := Precedence(code); got != i {
			t.Fatalf("Precedence(%q) = %d, want %d", code, got, i)
		}
	}
	absent, otherZh, other := Precedence(""), Precedence("zh-HK"), Precedence("en")
	if absent <= Precedence("ja") {
		t.Fatalf("absent code must rank after every listed code, got %d", absent)
	}
	if !(absent < otherZh && otherZh < other) {
		t.Fatalf("unexpected fallback order absent=%d zh-=%d other=%d", absent, otherZh, other)
	}
	if absent != 10 || otherZh != 11 || other != 12 {
		t.Fatalf("unexpected fallback values %d %d %d", absent, otherZh, other)
	}
}

func TestLessOrdering(t *testing.T) {
	base := Candidate{AlternateName: AlternateName{GeonameID: 5}, Rank: 3}
	preferred := base
	preferred.Preferred = FlagTrue
	short := base
	short.Short = FlagTrue
	preferredShort := preferred
	preferredShort.Short = FlagTrue

	if !Less(Candidate{AlternateName: AlternateName{GeonameID: 4}, Rank: 12}, base) {
		t.Fatal("lower geoname id must sort first regardless of rank")
	}
	if !Less(Candidate{AlternateName: AlternateName{GeonameID: 5}, Rank: 0}, base) {
		t.Fatal("lower rank must sort first")
	}
	if !Less(preferred, base) || Less(base, preferred) {
		t.Fatal("preferred must sort before non-preferred")
	}
	if !Less(base, short) || Less(short, base) {
		t.Fatal("non-short must sort before short")
	}
	if !Less(preferredShort, base) {
		t.Fatal("preferred+short must still beat a plain row on the preferred flag")
	}
	if !Less(preferred, preferredShort) {
		t.Fatal("preferred+short must lose to preferred-only on the short flag")
	}
	if Less(base, base) {
		t.Fatal("Less must be irreflexive")
	}
}

func TestSortAndDedupeKeepsFirstStable(t *testing.T) {
	rows := []Candidate{
		NewCandidate(AlternateName{GeonameID: 2, Language: "zh", Name: "b1"}),
		NewCandidate(AlternateName{GeonameID: 1, Language: "zh-TW", Name: "a-tw"}),
		NewCandidate(AlternateName{GeonameID: 2, Language: "zh", Name: "b2"}),
		NewCandidate(AlternateName{GeonameID: 1, Language: "zh-Hans", Name: "a-hans"}),
		NewCandidate(AlternateName{GeonameID: 3, Language: "", Name: "c"}),
	}
	got := SortAndDedupe(rows)
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "a-hans,b1,c" {
		t.Fatalf("unexpected dedupe result %v", names)
	}
}

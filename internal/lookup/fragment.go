package lookup

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// NormalizeFragment replaces the non-breaking space entities the peer search
// endpoint pads its columns with.
func NormalizeFragment(markup string) string {
	markup = strings.ReplaceAll(markup, "&nbsp;", " ")
	return strings.ReplaceAll(markup, "\u00a0", " ")
}

// Feed tokenizes markup and replays its events into p.
func Feed(p *Parser, markup string) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			p.HandleStart(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			p.HandleEnd(string(name))
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.HandleStart(string(name))
			p.HandleEnd(string(name))
		case html.TextToken:
			p.HandleData(string(z.Text()))
		}
	}
}

// Parse returns the complete entries found in a lookup fragment.
func Parse(markup string) []Entry {
	p := NewParser()
	Feed(p, NormalizeFragment(markup))
	return p.Entries()
}

// MatchScripName finds the symbol listed next to scripCode, e.g.
// "<span>HDFC   INE001A01036<strong>500010" yields "HDFC".
func MatchScripName(markup, scripCode string) (string, bool) {
	code := strings.TrimSpace(scripCode)
	if code == "" {
		return "", false
	}

	pattern := fmt.Sprintf(`<\w+>([A-Z0-9]+)\s+\w+\s+<\w+>%s`, regexp.QuoteMeta(code))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}

	match := re.FindStringSubmatch(NormalizeFragment(markup))
	if match == nil {
		return "", false
	}
	return match[1], true
}

// MatchScripCode finds the six digit code listed next to symbol, e.g.
// "<strong>HDFC</strong>   INE001A01036   500010" yields "500010".
func MatchScripCode(markup, symbol string) (string, bool) {
	name := strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		return "", false
	}

	pattern := fmt.Sprintf(`<\w+>%s</\w+>\s+\w+\s+(\d{6})`, regexp.QuoteMeta(name))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}

	match := re.FindStringSubmatch(NormalizeFragment(markup))
	if match == nil {
		return "", false
	}
	return match[1], true
}

var (
	symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)
	codePattern   = regexp.MustCompile(`^\d{6}$`)
	isinPattern   = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)
)

// ValidSymbol reports whether s looks like a trading symbol.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// ValidCode reports whether s is a six digit scrip code.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Valid reports whether the symbol, ISIN and scrip code have the expected
// shapes. Extra text events inside an anchor shift later fields into the
// wrong slots, and such entries fail this check.
func (e Entry) Valid() bool {
	return ValidSymbol(e.Symbol) && ValidCode(e.BSECode) && isinPattern.MatchString(e.ISIN)
}

// FindByCode returns the first valid entry whose exchange code equals code.
func FindByCode(entries []Entry, code string) (Entry, bool) {
	code = strings.TrimSpace(code)
	for _, e := range entries {
		if code != "" && e.BSECode == code && e.Valid() {
			return e, true
		}
	}
	return Entry{}, false
}

// FindBySymbol returns the first valid entry whose symbol equals symbol,
// ignoring case.
func FindBySymbol(entries []Entry, symbol string) (Entry, bool) {
	symbol = strings.TrimSpace(symbol)
	for _, e := range entries {
		if symbol != "" && strings.EqualFold(e.Symbol, symbol) && e.Valid() {
			return e, true
		}
	}
	return Entry{}, false
}

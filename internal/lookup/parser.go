// Package lookup extracts scrip records from the markup fragments returned by
// the exchange's peer search endpoint.
package lookup

import (
	"strings"
)

// TriggerTag is the element that wraps one lookup match.
const TriggerTag = "a"

// Field identifies a slot in a lookup entry.
type Field string

const (
	FieldCompanyName Field = "company_name"
	FieldSymbol      Field = "symbol"
	FieldISIN        Field = "isin"
	FieldBSECode     Field = "bse_code"
)

// Fields lists entry slots in the order they appear in the markup.
var Fields = [4]Field{FieldCompanyName, FieldSymbol, FieldISIN, FieldBSECode}

// Result holds the fields collected for the entry in progress.
type Result map[Field]string

// Entry is a completed lookup record.
type Entry struct {
	CompanyName string `json:"company_name"`
	Symbol      string `json:"symbol"`
	ISIN        string `json:"isin"`
	BSECode     string `json:"bse_code"`
}

// Entry converts r into an Entry. Missing fields are left empty.
func (r Result) Entry() Entry {
	return Entry{
		CompanyName: r[FieldCompanyName],
		Symbol:      r[FieldSymbol],
		ISIN:        r[FieldISIN],
		BSECode:     r[FieldBSECode],
	}
}

// Parser is a sequential field extractor fed by tag and text events.
//
// Text is only accepted between a TriggerTag start and end tag. Once four
// fields have been collected the entry is complete; further text without a
// Reset starts a new entry.
type Parser struct {
	active  bool
	index   int
	result  Result
	entries []Entry
}

// NewParser returns a parser in its initial state.
func NewParser() *Parser {
	return &Parser{result: Result{}}
}

// HandleStart marks the parser active when tag is the trigger tag.
func (p *Parser) HandleStart(tag string) {
	if isTrigger(tag) {
		p.active = true
	}
}

// HandleEnd marks the parser idle when tag is the trigger tag.
func (p *Parser) HandleEnd(tag string) {
	if isTrigger(tag) {
		p.active = false
	}
}

// HandleData assigns text to the next field slot.
func (p *Parser) HandleData(text string) {
	if !p.active {
		return
	}

	value := strings.TrimSpace(text)
	if value == "" {
		return
	}

	if p.result == nil {
		p.result = Result{}
	}
	if p.index >= len(Fields) {
		p.result = Result{}
		p.index = 0
	}

	if p.index == 1 {
		if tokens := strings.Fields(value); len(tokens) >= 2 {
			p.result[FieldSymbol] = tokens[0]
			p.result[FieldISIN] = strings.Join(tokens[1:], " ")
			p.advance(2)
			return
		}
	}

	p.result[Fields[p.index]] = value
	p.advance(1)
}

// Reset clears all state including completed entries.
func (p *Parser) Reset() {
	p.active = false
	p.index = 0
	p.result = Result{}
	p.entries = nil
}

// Active reports whether the parser is inside a trigger element.
func (p *Parser) Active() bool {
	return p.active
}

// Index is the next field slot to fill, in [0,4].
func (p *Parser) Index() int {
	return p.index
}

// Complete reports whether the current entry has all four fields.
func (p *Parser) Complete() bool {
	return p.index == len(Fields)
}

// Result returns a copy of the entry in progress.
func (p *Parser) Result() Result {
	out := make(Result, len(p.result))
	for k, v := range p.result {
		out[k] = v
	}
	return out
}

// Entries returns the completed entries in the order they were parsed.
func (p *Parser) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p *Parser) advance(n int) {
	p.index += n
	if p.index > len(Fields) {
		p.index = len(Fields)
	}
	if p.index == len(Fields) {
		p.entries = append(p.entries, p.result.Entry())
	}
}

func isTrigger(tag string) bool {
	return strings.EqualFold(strings.TrimSpace(tag), TriggerTag)
}

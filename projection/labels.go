package projection

import (
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
	"regexp"
	"strings"
)

// Matches piped variables, e.g. [dob] or [visit_date]
var pipingRe = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)

// PipeLabel replaces piped variables in a label with the scalar values of the record.
// Unknown fields and multi flag values are replaced with an empty string.
func PipeLabel(label string, record Record) string {
	return pipingRe.ReplaceAllStringFunc(label, func(match string) string {
		name := pipingRe.FindStringSubmatch(match)[1]
		return record.Value(name).ScalarValue()
	})
}

// PipedFields returns the names of the fields piped into a label in order of appearance
func PipedFields(label string) []string {
	var fields []string
	for _, match := range pipingRe.FindAllStringSubmatch(label, -1) {
		fields = append(fields, match[1])
	}
	return fields
}

// NormalizeLabel converts line breaks to spaces, strips all other markup, decodes entities
// and collapses whitespace
func NormalizeLabel(label string) string {
	var builder strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(label))

loop:
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF, malformed markup is tokenized as text
			break loop
		case html.TextToken:
			builder.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" {
				builder.WriteString(" ")
			}
		}
	}

	normalized := norm.NFC.String(builder.String())
	return strings.Join(strings.Fields(normalized), " ")
}

package choices

import "strings"

const (
	segmentSeparator = "|"
	labelSeparator   = ","
)

// Table maps a choice code to its label
type Table map[string]string

type Choice struct {
	Code  string
	Label string
}

// Parse splits an encoded choice list ("code,label|code,label") into choices in declaration order.
// Segments without a comma or with an empty code are skipped. Labels may contain commas.
func Parse(encoded string) []Choice {
	var result []Choice
	if strings.TrimSpace(encoded) == "" {
		return result
	}

	for _, segment := range strings.Split(encoded, segmentSeparator) {
		code, label, found := strings.Cut(segment, labelSeparator)
		if !found {
			continue
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		result = append(result, Choice{
			Code:  code,
			Label: strings.TrimSpace(label),
		})
	}

	return result
}

// Decode returns the code to label table of an encoded choice list. It never fails,
// malformed input produces an empty or partial table.
func Decode(encoded string) Table {
	parsed := Parse(encoded)
	table := make(Table, len(parsed))
	for _, choice := range parsed {
		table[choice.Code] = choice.Label
	}
	return table
}

func (t Table) Label(code string) (string, bool) {
	label, ok := t[code]
	return label, ok
}

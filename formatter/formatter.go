package formatter

import (
	"github.com/susom/smartdata-worker/choices"
	"strings"
)

const (
	checkedFlag   = "1"
	yes           = "Yes"
	no            = "No"
	flagSeparator = ", "
)

// Format produces the display string of a raw field value. The second return value is false when
// the result would be empty, in which case the caller must omit the field.
func Format(raw RawValue, typ FieldType, table choices.Table) (string, bool) {
	var result string

	switch typ {
	case FieldTypeCheckbox:
		result = formatCheckbox(raw, table)
	case FieldTypeYesNo:
		// Choices of yesno fields are not reliable upstream
		if raw.ScalarValue() == checkedFlag {
			result = yes
		} else {
			result = no
		}
	case FieldTypeSelect, FieldTypeRadio, FieldTypeTrueFalse:
		value := raw.ScalarValue()
		if label, ok := table.Label(strings.TrimSpace(value)); ok {
			result = label
		} else {
			result = value
		}
	default:
		result = strings.TrimSpace(raw.ScalarValue())
	}

	if strings.TrimSpace(result) == "" {
		return "", false
	}
	return result, true
}

func formatCheckbox(raw RawValue, table choices.Table) string {
	var labels []string
	for _, flag := range raw.Flags() {
		if !flag.Checked() {
			continue
		}
		if label, ok := table.Label(flag.Code); ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, flag.Code)
		}
	}
	return strings.Join(labels, flagSeparator)
}

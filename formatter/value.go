package formatter

import "strings"

type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeSelect    FieldType = "select"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeYesNo     FieldType = "yesno"
	FieldTypeTrueFalse FieldType = "truefalse"
	FieldTypeOther     FieldType = "other"
)

// ParseFieldType maps a record system field type to a FieldType. REDCap calls single
// choice lists "dropdown", free text variants (notes, calc, slider, ...) become "other".
func ParseFieldType(value string) FieldType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "text":
		return FieldTypeText
	case "select", "dropdown":
		return FieldTypeSelect
	case "radio":
		return FieldTypeRadio
	case "checkbox":
		return FieldTypeCheckbox
	case "yesno":
		return FieldTypeYesNo
	case "truefalse":
		return FieldTypeTrueFalse
	default:
		return FieldTypeOther
	}
}

type kind int

const (
	kindScalar kind = iota
	kindMultiFlag
)

// Flag is a single checkbox option of a multi-valued field. A flag is checked when its value is "1".
type Flag struct {
	Code  string
	Value string
}

func (f Flag) Checked() bool {
	return f.Value == checkedFlag
}

// RawValue is either a scalar or an ordered list of checkbox flags. The zero value is an empty scalar.
type RawValue struct {
	kind   kind
	scalar string
	flags  []Flag
}

func Scalar(value string) RawValue {
	return RawValue{kind: kindScalar, scalar: value}
}

func MultiFlag(flags ...Flag) RawValue {
	copied := make([]Flag, len(flags))
	copy(copied, flags)
	return RawValue{kind: kindMultiFlag, flags: copied}
}

func (r RawValue) IsScalar() bool {
	return r.kind == kindScalar
}

func (r RawValue) IsMultiFlag() bool {
	return r.kind == kindMultiFlag
}

// ScalarValue returns the scalar value, or an empty string for multi flag values
func (r RawValue) ScalarValue() string {
	if r.kind != kindScalar {
		return ""
	}
	return r.scalar
}

func (r RawValue) Flags() []Flag {
	if r.kind != kindMultiFlag {
		return nil
	}
	flags := make([]Flag, len(r.flags))
	copy(flags, r.flags)
	return flags
}

package config

import (
	"strconv"
	"strings"
	"time"
)

// pflag.Value implementations bound to Config fields

type stringValue struct{ p *string }

func newStringValue(p *string) *stringValue { return &stringValue{p: p} }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }
func (v *stringValue) Type() string       { return "string" }

type intValue struct{ p *int }

func newIntValue(p *int) *intValue { return &intValue{p: p} }

func (v *intValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }
func (v *intValue) Type() string   { return "int" }

type boolValue struct{ p *bool }

func newBoolValue(p *bool) *boolValue { return &boolValue{p: p} }

func (v *boolValue) Set(s string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v *boolValue) Type() string   { return "bool" }

// IsBoolFlag allows "--flag" without a value.
func (v *boolValue) IsBoolFlag() bool { return true }

type durationValue struct{ p *time.Duration }

func newDurationValue(p *time.Duration) *durationValue { return &durationValue{p: p} }

func (v *durationValue) Set(s string) error {
	d, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*v.p = d
	return nil
}
func (v *durationValue) String() string { return v.p.String() }
func (v *durationValue) Type() string   { return "duration" }

type listValue struct{ p *[]string }

func newListValue(p *[]string) *listValue { return &listValue{p: p} }

func (v *listValue) Set(s string) error {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*v.p = out
	return nil
}
func (v *listValue) String() string { return strings.Join(*v.p, ",") }
func (v *listValue) Type() string   { return "strings" }

// Package inputval validates decoded request structs with
// go-playground/validator and turns failures into per-field messages keyed by
// JSON path, e.g. "eventAgenda[2].title".
//
// A top-level field may carry a label tag to name it in messages:
//
//	Title string `json:"title" validate:"required,min=3" label:"Title"`
//
// Besides the built-in rules, notblank rejects whitespace-only strings.
package inputval

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects field errors in the order they were found.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Add records message against field.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Fields maps each failed field to its first message.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			return f.Kind() == reflect.String && strings.TrimSpace(f.String()) != ""
		})
	})
	return validate
}

// jsonName returns the field's JSON key, "" for skipped fields, or the Go
// name when untagged.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// Validate checks s against its validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Add("", "Input is invalid.")
		return res
	}

	labels := labelsOf(s)
	for _, e := range verrs {
		path := e.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		label := labels[path]
		if label == "" {
			label = path
		}
		res.Add(path, message(label, e.Tag(), e.Param(), e.Kind()))
	}
	return res
}

// labelsOf reads label tags from s's top-level fields, keyed by JSON name.
func labelsOf(s any) map[string]string {
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return nil
	}
	labels := map[string]string{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if l := f.Tag.Get("label"); l != "" {
			labels[jsonName(f)] = l
		}
	}
	return labels
}

func message(label, rule, param string, kind reflect.Kind) string {
	var unit string
	switch kind {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}

	switch rule {
	case "required", "notblank":
		return label + " is required."
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + unit + "."
	case "max":
		return label + " must be at most " + param + unit + "."
	case "gte":
		return label + " must be " + param + " or greater."
	case "lte":
		return label + " must be " + param + " or less."
	case "url", "http_url":
		return label + " must be a valid URL."
	}
	return label + " is invalid."
}

// Package validate checks struct fields against rules in the `validate` tag.
//
// Rules (comma separated; the first failing rule per field wins):
//
//	required          not zero or blank
//	nullable          skip remaining rules when empty
//	email             valid email address
//	date              2006-01-02 or RFC 3339
//	objectid          24-hex MongoDB ObjectID
//	min=N / max=N     numbers: value bound; strings: rune length bound
//	gte=N / lte=N     numeric bounds
//	max_items=N       slice length bound
//	in=a,b,c          value is one of the listed items
//	each_in=a,b,c     every slice element is one of the listed items
//	each_objectid     every slice element is an ObjectID
//
//	type NewOffer struct {
//	    Title   string `json:"title"           validate:"required,max=120"`
//	    Percent int    `json:"discountPercent" validate:"gte=1,lte=100"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Struct validates v's tagged fields and returns json field name → message.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		value := rv.Field(i)
		name := jsonFieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}
		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether errs is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ObjectID reports whether s is a MongoDB ObjectID hex string.
func ObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Date parses the date formats accepted by the date rule.
func Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as date", s)
}

func applyRule(rule, field string, v reflect.Value) string {
	raw := stringOf(v)
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "date":
		if _, err := Date(raw); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", field)
		}
	case "objectid":
		if !ObjectID(raw) {
			return fmt.Sprintf("The %s must be a valid id.", field)
		}
	case "min":
		n := mustParseFloat(param)
		if f, ok := number(v); ok {
			if f < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if f, ok := number(v); ok {
			if f > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lte":
		if toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "max_items":
		if v.Kind() == reflect.Slice && float64(v.Len()) > mustParseFloat(param) {
			return fmt.Sprintf("The %s may not have more than %s items.", field, param)
		}
	case "in":
		if !oneOf(raw, param) {
			return fmt.Sprintf("The selected %s is invalid.", field)
		}
	case "each_in":
		if v.Kind() != reflect.Slice {
			return ""
		}
		for i := 0; i < v.Len(); i++ {
			if !oneOf(stringOf(v.Index(i)), param) {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}
	case "each_objectid":
		if v.Kind() != reflect.Slice {
			return ""
		}
		for i := 0; i < v.Len(); i++ {
			if !ObjectID(stringOf(v.Index(i))) {
				return fmt.Sprintf("The %s must contain valid ids.", field)
			}
		}
	}

	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func stringOf(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// number returns v as a float when it holds a numeric kind or a decimal.
func number(v reflect.Value) (float64, bool) {
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal).InexactFloat64(), true
	}
	switch {
	case v.CanInt():
		return float64(v.Int()), true
	case v.CanUint():
		return float64(v.Uint()), true
	case v.CanFloat():
		return v.Float(), true
	}
	return 0, false
}

func isEmpty(v reflect.Value) bool {
	if f, ok := number(v); ok {
		return f == 0
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// toFloat falls back to parsing the printed value for non-numeric kinds.
func toFloat(v reflect.Value) float64 {
	if f, ok := number(v); ok {
		return f
	}
	f, _ := strconv.ParseFloat(stringOf(v), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func oneOf(value, list string) bool {
	return slices.ContainsFunc(strings.Split(list, ","), func(a string) bool {
		return strings.TrimSpace(a) == value
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	name, _, _ = strings.Cut(name, ",")
	return name
}

// splitRules splits a tag on commas, keeping the values of list rules
// (in=, each_in=) together: "required,in=a,b,max=3" → [required in=a,b max=3].
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inList := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inList {
				s := current.String()
				inList = s == "in=" || s == "each_in="
			}
			continue
		}
		if inList && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inList = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func looksLikeNewRule(s string) bool {
	for _, k := range []string{
		"required", "nullable", "email", "date", "objectid", "each_objectid",
		"min=", "max=", "gte=", "lte=", "max_items=", "in=", "each_in=",
	} {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	return slices.Contains(rules, target)
}

package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tkp/constants"
	"github.com/joseph-ayodele/tkp/internal/llm"
)

// Validator checks a raw model reply and turns it into a RawExtraction.
//
// Checks run in a fixed order: well-formedness, presence of found_items,
// the empty list, header scalars, per-item structure (first failure wins),
// then per-item values (all failures collected). In strict mode the reply must also
// match the full schema; otherwise schema drift is only logged.
type Validator struct {
	strict bool
	schema *jsonschema.Schema
	log    *slog.Logger
}

// NewValidator compiles the quote schema once.
func NewValidator(strict bool, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := llm.CompileSchema(llm.BuildQuoteJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Validator{strict: strict, schema: schema, log: logger}, nil
}

// Validate never returns both a non-empty extraction and an error.
func (v *Validator) Validate(raw string) (RawExtraction, error) {
	doc, err := decodeObject(raw)
	if err != nil {
		return RawExtraction{}, err
	}

	itemsVal, ok := doc["found_items"]
	list, isList := itemsVal.([]any)
	if !ok || !isList {
		return RawExtraction{}, &FormatError{Raw: raw, Index: -1, Reason: "found_items is missing or not an array"}
	}

	if len(list) == 0 {
		return v.emptyHeader(doc), nil
	}

	out, err := v.header(raw, doc)
	if err != nil {
		return RawExtraction{}, err
	}

	items := make([]RawItem, 0, len(list))
	for i, entry := range list {
		it, err := parseItem(raw, i, entry)
		if err != nil {
			return RawExtraction{}, err
		}
		items = append(items, it)
	}

	if verr := checkValues(raw, items); verr != nil {
		return RawExtraction{}, verr
	}

	if err := v.checkSchema(raw); err != nil {
		return RawExtraction{}, err
	}

	out.Items = items
	return out, nil
}

func decodeObject(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Raw: raw, Err: errors.New("trailing data after JSON value")}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &FormatError{Raw: raw, Index: -1, Reason: "top-level value is not an object"}
	}
	return obj, nil
}

// header reads the top-level scalars. Missing ones are zero; wrong types are
// format errors.
func (v *Validator) header(raw string, doc map[string]any) (RawExtraction, error) {
	var out RawExtraction

	if n, ok := doc["id"]; ok && n != nil {
		num, isNum := n.(json.Number)
		if !isNum {
			return out, &FormatError{Raw: raw, Index: -1, Reason: "id is not a number"}
		}
		id, err := wholeNumber(num)
		if err != nil {
			return out, &FormatError{Raw: raw, Index: -1, Reason: "id: " + err.Error()}
		}
		out.ID = id
	}

	var err error
	var complexity string
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"complexity", &complexity},
		{"query", &out.Query},
		{"description", &out.Description},
		{"additional_notes", &out.Notes},
	} {
		if *f.dst, err = optionalString(doc, f.key); err != nil {
			return out, &FormatError{Raw: raw, Index: -1, Reason: err.Error()}
		}
	}

	c, known := constants.CanonicalizeComplexity(complexity)
	if !known && complexity != "" {
		v.log.Warn("quote.validate.complexity_unknown", "value", complexity)
	}
	out.Complexity = c
	return out, nil
}

// emptyHeader reads the scalars of a reply with no items. A mistyped field
// is dropped so that "nothing found" still reaches the caller.
func (v *Validator) emptyHeader(doc map[string]any) RawExtraction {
	var out RawExtraction
	if raw, ok := doc["id"]; ok && raw != nil {
		n, _ := raw.(json.Number)
		if id, err := wholeNumber(n); err == nil {
			out.ID = id
		} else {
			v.log.Warn("quote.validate.field_dropped", "field", "id", "value", raw)
		}
	}

	var complexity string
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"complexity", &complexity},
		{"query", &out.Query},
		{"description", &out.Description},
		{"additional_notes", &out.Notes},
	} {
		s, err := optionalString(doc, f.key)
		if err != nil {
			v.log.Warn("quote.validate.field_dropped", "field", f.key, "err", err)
			continue
		}
		*f.dst = s
	}
	out.Complexity, _ = constants.CanonicalizeComplexity(complexity)
	return out
}

func parseItem(raw string, index int, entry any) (RawItem, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return RawItem{}, &FormatError{Raw: raw, Index: index, Item: itemLabel("", index), Reason: "item is not an object"}
	}

	name, _ := obj["name"].(string)
	name = strings.TrimSpace(name)
	label := itemLabel(name, index)
	fail := func(reason string) (RawItem, error) {
		return RawItem{}, &FormatError{Raw: raw, Index: index, Item: label, Reason: reason}
	}

	if name == "" {
		return fail("name is missing or empty")
	}
	article, err := optionalString(obj, "article")
	if err != nil {
		return fail(err.Error())
	}

	countNum, ok := obj["count"].(json.Number)
	if !ok {
		return fail("count is missing or not a number")
	}
	count, err := wholeNumber(countNum)
	if err != nil {
		return fail("count: " + err.Error())
	}

	costNum, ok := obj["unit_cost"].(json.Number)
	if !ok {
		return fail("unit_cost is missing or not a number")
	}
	unitCost, err := decimal.NewFromString(costNum.String())
	if err != nil {
		return fail("unit_cost: " + err.Error())
	}

	return RawItem{
		Name:     name,
		Article:  strings.TrimSpace(article),
		Count:    count,
		UnitCost: unitCost,
	}, nil
}

func checkValues(raw string, items []RawItem) error {
	var violations []Violation
	for i, it := range items {
		if it.Count <= 0 {
			violations = append(violations, Violation{Index: i, Item: it.Name, Field: "count", Value: fmt.Sprint(it.Count)})
		}
		if it.UnitCost.IsNegative() {
			violations = append(violations, Violation{Index: i, Item: it.Name, Field: "unit_cost", Value: it.UnitCost.String()})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValueError{Raw: raw, Violations: violations}
}

func (v *Validator) checkSchema(raw string) error {
	err := llm.ValidateJSON(v.schema, []byte(raw))
	if err == nil {
		return nil
	}
	if v.strict {
		return &FormatError{Raw: raw, Index: -1, Reason: err.Error()}
	}
	v.log.Warn("quote.validate.schema_drift", "err", err)
	return nil
}

// wholeNumber accepts integral JSON numbers, including forms like 3.0 or 1e2.
func wholeNumber(n json.Number) (int64, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	bi := d.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%s is out of range", n)
	}
	return bi.Int64(), nil
}

func optionalString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string", key)
	}
	return s, nil
}

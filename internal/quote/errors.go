package quote

import (
	"fmt"

	"github.com/joseph-ayodele/tkp/internal/common"
)

// User-facing messages for rejected model output.
const (
	msgParse       = "Не удалось распарсить ответ модели"
	msgBadItems    = "LLM не вернула корректный формат данных"
	msgItemFormat  = "Некорректный формат данных в товаре: "
	msgItemValues  = "Некорректные значения для товара: "
	unnamedItemFmt = "#%d"
)

// RawCarrier is implemented by errors that keep the model's raw reply for
// diagnosis.
type RawCarrier interface {
	RawResponse() string
}

// ParseError means the model reply was not well-formed JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{common.ErrParse, e.Err} }
func (e *ParseError) RawResponse() string { return e.Raw }

// UserMessage is the text shown to the end user.
func (e *ParseError) UserMessage() string { return msgParse }

// FormatError means the reply was JSON but not the expected shape. Index is
// -1 when the problem is outside found_items entries.
type FormatError struct {
	Raw    string
	Index  int
	Item   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Index < 0 {
		return "format: " + e.Reason
	}
	return fmt.Sprintf("format: item %d (%s): %s", e.Index, e.Item, e.Reason)
}

func (e *FormatError) Unwrap() error { return common.ErrFormat }
func (e *FormatError) RawResponse() string { return e.Raw }

func (e *FormatError) UserMessage() string {
	if e.Index < 0 {
		return msgBadItems
	}
	return msgItemFormat + e.Item
}

// Violation is one out-of-range field on one item.
type Violation struct {
	Index int
	Item  string
	Field string
	Value string
}

// ValueError lists every item whose numbers are structurally fine but out
// of range (count <= 0 or unit_cost < 0).
type ValueError struct {
	Raw        string
	Violations []Violation
}

func (e *ValueError) Error() string {
	if len(e.Violations) == 0 {
		return "value: invalid item values"
	}
	v := e.Violations[0]
	msg := fmt.Sprintf("value: item %d (%s): %s=%s", v.Index, v.Item, v.Field, v.Value)
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func (e *ValueError) Unwrap() error { return common.ErrValue }
func (e *ValueError) RawResponse() string { return e.Raw }

func (e *ValueError) UserMessage() string {
	if len(e.Violations) == 0 {
		return msgItemValues
	}
	return msgItemValues + e.Violations[0].Item
}

func itemLabel(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf(unnamedItemFmt, index+1)
}

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerValue is a submitted answer. Clients send option ids either as JSON
// numbers or strings and free text as strings; all are kept as text.
type AnswerValue string

func (v *AnswerValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = AnswerValue(s)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("answer must be a string or a number, got %s", string(b))
	}
	*v = AnswerValue(n.String())
	return nil
}

func (v AnswerValue) String() string { return string(v) }

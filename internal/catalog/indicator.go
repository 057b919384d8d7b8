// Package catalog loads the indicator catalog (indicators.json) into an
// ordered list of Indicator records.
//
// The catalog is a JSON object mapping an indicator key to its record.
// Records keep the document order of the keys, and so do the variables of
// each record; both orders are visible in search output.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Indicator is one catalog record. ID is the lower-cased catalog key.
type Indicator struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Abstract string    `json:"abstract"`
	Vars     Variables `json:"vars"`
	Realm    string    `json:"realm"`
	Module   string    `json:"module" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Keywords []string  `json:"keywords" validate:"required,min=1"`

	// Key is the catalog key as written in the source document.
	Key string `json:"-"`
}

// Reference returns the namespaced "<module>.<name>" reference.
func (i *Indicator) Reference() string {
	return i.Module + "." + i.Name
}

// Variable is one input of an indicator: a short name and its description.
type Variable struct {
	Name        string
	Description string
}

// Variables maps variable short names to descriptions, in document order.
type Variables []Variable

// Names returns the variable short names in order.
func (v Variables) Names() []string {
	names := make([]string, len(v))
	for i, vv := range v {
		names[i] = vv.Name
	}
	return names
}

// Get returns the description of the named variable.
func (v Variables) Get(name string) (string, bool) {
	for _, vv := range v {
		if vv.Name == name {
			return vv.Description, true
		}
	}
	return "", false
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (v *Variables) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("vars: %w", err)
	}

	out := Variables{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("vars: %w", err)
		}
		var desc string
		if err := dec.Decode(&desc); err != nil {
			return fmt.Errorf("vars.%s: %w", key, err)
		}
		out = append(out, Variable{Name: key, Description: desc})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("vars: %w", err)
	}

	*v = out
	return nil
}

// MarshalJSON encodes the variables as a JSON object in order.
func (v Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vv := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, vv.Name, vv.Description); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// Decode parses a catalog document. Each key is lower-cased into the
// record's ID; records are returned in document order.
func Decode(r io.Reader) ([]*Indicator, error) {
	dec := json.NewDecoder(r)
	lower := cases.Lower(language.Und)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, malformed("catalog must be a JSON object", err)
	}

	inds := []*Indicator{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, malformed("invalid catalog key", err)
		}

		var ind Indicator
		if err := dec.Decode(&ind); err != nil {
			return nil, malformed(fmt.Sprintf("invalid record %q", key), err).
				WithDetail("key", key)
		}
		ind.Key = key
		ind.ID = lower.String(key)
		inds = append(inds, &ind)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, malformed("unterminated catalog object", err)
	}
	return inds, nil
}

// Encode writes inds back as a catalog document keyed by the original keys.
func Encode(w io.Writer, inds []*Indicator) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ind := range inds {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := ind.Key
		if key == "" {
			key = ind.ID
		}
		if err := writeMember(&buf, key, ind); err != nil {
			return fmt.Errorf("encode %s: %w", ind.ID, err)
		}
	}
	buf.WriteByte('}')
	_, err := w.Write(buf.Bytes())
	return err
}

func malformed(msg string, cause error) *inderrors.IndError {
	return inderrors.New(inderrors.ErrCodeCatalogMalformed, msg, cause)
}

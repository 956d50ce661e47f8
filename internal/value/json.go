package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrTrailingData = errors.New("unexpected data after document")

// FromJSON decodes a single JSON document, preserving object key order and
// distinguishing integer from float literals.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// DecodeJSONStream decodes every JSON document in r, concatenated or
// whitespace-separated. End of input is clean only between documents,
// a truncated document is an error.
func DecodeJSONStream(r io.Reader) ([]Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var out []Value
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := midToken(dec)
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

// midToken reads a token inside a document, where running out of input
// means the document is truncated.
func midToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		n, err := ParseNumber(t.String())
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Num(n), nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := midToken(dec)
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, v)
			}
			if _, err := midToken(dec); err != nil {
				return Value{}, err
			}
			return Obj(obj), nil
		case '[':
			arr := []Value{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, v)
			}
			if _, err := midToken(dec); err != nil {
				return Value{}, err
			}
			return Arr(arr...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// ToJSON renders v as compact JSON.
func ToJSON(v Value) []byte {
	return appendJSON(nil, v)
}

// ToJSONIndent renders v as indented JSON.
func ToJSONIndent(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, appendJSON(nil, v), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendJSON(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.num.String()...)
	case KindString:
		return appendJSONString(dst, v.str)
	case KindArray:
		dst = append(dst, '[')
		for i, e := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSON(dst, e)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i := range v.obj.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSONString(dst, v.obj.keys[i])
			dst = append(dst, ':')
			dst = appendJSON(dst, v.obj.vals[i])
		}
		return append(dst, '}')
	}
	return dst
}

func appendJSONString(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		return append(dst, `""`...)
	}
	return append(dst, b...)
}

package rpc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var ErrUnexpectedEncoding = errors.New("unexpected account data encoding")

const encodingBase64 = "base64"

// DecodeData decodes value.data, which must be exactly [payload, "base64"].
func (v *AccountInfoValue) DecodeData() ([]byte, error) {
	if v == nil {
		return nil, errors.New("account value is nil")
	}

	raw := bytes.TrimSpace(v.Data)
	if len(raw) == 0 {
		return nil, errors.Wrap(ErrUnexpectedEncoding, "data field missing")
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "expected [payload, %q], got %s", encodingBase64, describeShape(raw))
	}

	if len(parts) != 2 {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "expected 2 elements, got %d", len(parts))
	}

	var payload, encoding string
	if err := json.Unmarshal(parts[0], &payload); err != nil {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "payload is %s, not a string", describeShape(parts[0]))
	}
	if err := json.Unmarshal(parts[1], &encoding); err != nil {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "encoding tag is %s, not a string", describeShape(parts[1]))
	}

	if encoding != encodingBase64 {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "encoding tag %q, want %q", encoding, encodingBase64)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrapf(ErrUnexpectedEncoding, "invalid base64 payload: %v", err)
	}

	return data, nil
}

func describeShape(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}

	var kind string
	switch raw[0] {
	case '"':
		kind = "string"
	case '{':
		kind = "object"
	case '[':
		kind = "array"
	case 't', 'f':
		kind = "boolean"
	case 'n':
		kind = "null"
	default:
		kind = "number"
	}

	if len(raw) > 64 {
		return fmt.Sprintf("%s %s...", kind, raw[:64])
	}

	return fmt.Sprintf("%s %s", kind, raw)
}

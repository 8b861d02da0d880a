package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/datatypes"
)

const (
	MsgRequired       = "This field is required."
	MsgNull           = "This field may not be null."
	MsgInvalidJSON    = "Value must be valid JSON."
	MsgNoURLMatch     = "Invalid hyperlink - No URL match."
	MsgIncorrectMatch = "Invalid hyperlink - Incorrect URL match."
	MsgObjectMissing  = "Invalid hyperlink - Object does not exist."
	MsgExpectedURL    = "Incorrect type. Expected URL string, received %s."
	MsgExpectedString = "Not a valid string."
	MsgExpectedList   = "Expected a list of items but got type \"%s\"."
	MsgInvalidBoolean = "Must be a valid boolean."
)

// FieldError rejects the value of a single request field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) *FieldError {
	return &FieldError{Field: field, Code: "required", Message: MsgRequired}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DecodeJSONValue accepts either a string holding JSON text or a JSON value
// and returns the compacted document.
func DecodeJSONValue(field string, raw json.RawMessage) (datatypes.JSON, *FieldError) {
	if isNull(raw) {
		return nil, &FieldError{Field: field, Code: "null", Message: MsgNull}
	}
	doc := []byte(raw)

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		doc = []byte(text)
	}
	if !json.Valid(doc) {
		return nil, &FieldError{Field: field, Code: "invalid", Message: MsgInvalidJSON}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return nil, &FieldError{Field: field, Code: "invalid", Message: MsgInvalidJSON}
	}
	return datatypes.JSON(buf.Bytes()), nil
}

// ParseHyperlink extracts the lookup value from a detail URL under prefix.
// A JSON null yields nil.
func ParseHyperlink(field, prefix string, raw json.RawMessage) (*string, *FieldError) {
	if isNull(raw) {
		return nil, nil
	}
	var link string
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, &FieldError{Field: field, Code: "incorrect_type", Message: fmt.Sprintf(MsgExpectedURL, jsonKind(raw))}
	}

	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, &FieldError{Field: field, Code: "no_match", Message: MsgNoURLMatch}
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		return nil, &FieldError{Field: field, Code: "no_match", Message: MsgNoURLMatch}
	}
	if !strings.HasPrefix(path, prefix) {
		if knownPath(path) {
			return nil, &FieldError{Field: field, Code: "incorrect_match", Message: MsgIncorrectMatch}
		}
		return nil, &FieldError{Field: field, Code: "no_match", Message: MsgNoURLMatch}
	}

	lookup := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	if lookup == "" || strings.Contains(lookup, "/") {
		return nil, &FieldError{Field: field, Code: "incorrect_match", Message: MsgIncorrectMatch}
	}
	return &lookup, nil
}

// ObjectMissing is the error for a hyperlink to an object the caller cannot see.
func ObjectMissing(field string) *FieldError {
	return &FieldError{Field: field, Code: "does_not_exist", Message: MsgObjectMissing}
}

func knownPath(path string) bool {
	for _, p := range []string{PathAssets, PathCollections, PathTags, PathUsers, PathUserAccounts} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "str"
	}
	switch trimmed[0] {
	case '"':
		return "str"
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	default:
		if bytes.ContainsAny(trimmed, ".eE") {
			return "float"
		}
		return "int"
	}
}

func decodeString(field string, raw json.RawMessage, nullable bool) (*string, *FieldError) {
	if raw == nil {
		return nil, nil
	}
	if isNull(raw) {
		if nullable {
			return nil, nil
		}
		return nil, &FieldError{Field: field, Code: "null", Message: MsgNull}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &FieldError{Field: field, Code: "invalid", Message: MsgExpectedString}
	}
	return &s, nil
}

func decodeStringList(field string, raw json.RawMessage) (*[]string, *FieldError) {
	if raw == nil {
		return nil, nil
	}
	if isNull(raw) {
		return nil, &FieldError{Field: field, Code: "null", Message: MsgNull}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &FieldError{Field: field, Code: "not_a_list", Message: fmt.Sprintf(MsgExpectedList, jsonKind(raw))}
	}
	return &list, nil
}

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/yukikurage/site-services-api/internal/errors"
)

// InvalidValueError is returned while decoding a field whose value has the wrong shape.
type InvalidValueError struct {
	Code  string
	Field string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s", e.Field)
}

// NullableID distinguishes an absent field from null. null, 0 and "" clear the value.
type NullableID struct {
	Set   bool
	Value *uint64
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "0" || raw == "false" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return &InvalidValueError{Code: apierrors.ErrCodeInvalidAssignee, Field: "assignedTo"}
	}
	n.Value = &id
	return nil
}

// FlexID is a numeric id field given as a JSON number or a numeric string.
// null and "" decode as 0; malformed values are INVALID_ID.
type FlexID int

func (f *FlexID) UnmarshalJSON(data []byte) error {
	v, err := ParseFlexInt(string(data), apierrors.ErrCodeInvalidID, "ticketId")
	*f = FlexID(v)
	return err
}

// FlexStars is a rating value. Malformed values are INVALID_STARS.
type FlexStars int

func (f *FlexStars) UnmarshalJSON(data []byte) error {
	v, err := ParseFlexInt(string(data), apierrors.ErrCodeInvalidStars, "stars")
	*f = FlexStars(v)
	return err
}

// FlexHours is an announcement lifetime. Malformed values are MISSING_FIELDS.
type FlexHours int

func (f *FlexHours) UnmarshalJSON(data []byte) error {
	v, err := ParseFlexInt(string(data), apierrors.ErrCodeMissingFields, "expiresHours")
	*f = FlexHours(v)
	return err
}

// ParseFlexInt parses a raw JSON token or form value as a whole number.
// Empty and null give 0; anything else that is not an integer yields an
// InvalidValueError carrying code and field.
func ParseFlexInt(raw, code, field string) (int, error) {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if raw == "" || raw == "null" {
		return 0, nil
	}
	n := json.Number(raw)
	v, err := n.Int64()
	if err != nil {
		fv, ferr := n.Float64()
		if ferr != nil || fv != float64(int64(fv)) {
			return 0, &InvalidValueError{Code: code, Field: field}
		}
		v = int64(fv)
	}
	return int(v), nil
}

// FlexBool accepts true/false, 1/0 and their string forms.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return &InvalidValueError{Code: apierrors.ErrCodeMissingFields, Field: "active"}
	}
	return nil
}

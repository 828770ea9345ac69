package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// maxUserIDs bounds how many users a single ratings graph request may name.
const maxUserIDs = 500

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, valid map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !valid[format] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return nil
}

// ValidateUserID parses a MovieLens user id. Both "42" and "u42" are accepted.
func ValidateUserID(raw string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "u")
	if s == "" {
		return 0, New(ErrCodeInvalidInput, "user id cannot be empty")
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, New(ErrCodeInvalidInput, "invalid user id: %q", raw)
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, New(ErrCodeInvalidInput, "invalid user id: %q", raw)
	}
	return id, nil
}

// ValidateUserIDs parses and deduplicates a list of user ids, keeping request order.
func ValidateUserIDs(raw []string) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			id, err := ValidateUserID(part)
			if err != nil {
				return nil, err
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, New(ErrCodeInvalidInput, "at least one user id is required")
	}
	if len(ids) > maxUserIDs {
		return nil, New(ErrCodeInvalidInput, "too many user ids (max %d)", maxUserIDs)
	}
	return ids, nil
}

package errors

import (
	"testing"
)

func TestValidateFormat(t *testing.T) {
	valid := map[string]bool{"svg": true, "png": true}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"png", "png", false},
		{"empty", "", true},
		{"unknown", "pdf", true},
		{"case sensitive", "SVG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.input, valid)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidFormat)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"plain", "42", 42, false},
		{"prefixed", "u42", 42, false},
		{"spaces", " 7 ", 7, false},
		{"empty", "", 0, true},
		{"prefix only", "u", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"movie id", "m12", 0, true},
		{"letters", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUserID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUserID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateUserID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateUserIDs(t *testing.T) {
	ids, err := ValidateUserIDs([]string{"3,1", "u3", "2"})
	if err != nil {
		t.Fatalf("ValidateUserIDs error: %v", err)
	}
	want := []int{3, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("ValidateUserIDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	if _, err := ValidateUserIDs(nil); err == nil {
		t.Error("ValidateUserIDs(nil) should fail")
	}
	if _, err := ValidateUserIDs([]string{"1,x"}); err == nil {
		t.Error("ValidateUserIDs with invalid id should fail")
	}
}

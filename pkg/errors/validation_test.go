package errors

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Atlas", false},
		{"valid with spaces", "Atlas the Explorer", false},
		{"valid unicode", "Àtlas 🦞", false},
		{"exactly max", strings.Repeat("a", 100), false},

		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", 101), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("name", tt.input, MaxNameLength)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateText(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateSkillsCount(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{1, false},
		{6, false},
		{20, false},
		{0, true},
		{-1, true},
		{21, true},
	}

	for _, tt := range tests {
		err := ValidateSkillsCount(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSkillsCount(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateSignatureID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"upper", "7A8F4465", false},
		{"lower", "7a8f4465", false},
		{"short", "C94C9D8", false},

		{"empty", "", true},
		{"too long", "7A8F44651", true},
		{"non hex", "7A8F446G", true},
		{"hash prefix", "#7A8F4465", true},
		{"path traversal", "../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignatureID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSignatureID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSignatureID(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"7a8f4465", "7A8F4465"},
		{"C94C9D8", "0C94C9D8"},
		{"ff", "000000FF"},
	}
	for _, tt := range tests {
		if got := NormalizeSignatureID(tt.input); got != tt.want {
			t.Errorf("NormalizeSignatureID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://clawdsign.example.com", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
		{"javascript:alert(1)", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

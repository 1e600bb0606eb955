package errors

import (
	"testing"
)

func TestValidateStudyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "color-shape", false},
		{"valid with spaces", "pilot study 3", false},
		{"valid with underscore", "tone_discrimination", false},
		{"valid unicode", "visée", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "pilot/3", true},
		{"backslash", "pilot\\3", true},
		{"control char", "pilot\x01", true},
		{"newline", "pilot\nstudy", true},
		{"carriage return", "pilot\rstudy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudyName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudyName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && err != nil && GetCode(err) != ErrCodeInvalidArgument {
				t.Errorf("ValidateStudyName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidArgument)
			}
		})
	}
}

func TestValidateParticipant(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid id", "P042", false},
		{"valid uuid-ish", "3f6c1a52-77a1-4f0b-9a9e-000000000000", false},
		{"valid email-like", "subject-12@lab", false},
		{"valid with slash", "cohort/12", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "p\x00", true},
		{"tab", "p\t1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParticipant(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParticipant(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

package errors

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Engine", false},
		{"KismetMathLibrary", false},
		{"_Private", false},
		{"UMG2", false},

		{"", true},
		{"2Fast", true},
		{"Has Space", true},
		{"../Engine", true},
		{"Engine/Core", true},
		{strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateIdentifier("module", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateIdentifier(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "My Project", false},
		{"unicode", "Dokumentation für Knoten", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"newline", "line\nbreak", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"separators", "./", true},
		{"backslash", " \\ ", true},
		{"dotted name", ".hidden", false},
		{"too long", strings.Repeat("x", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateContentPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"root", "/Game", false},
		{"nested", "/Game/Characters/Hero", false},
		{"plugin", "/MyPlugin/Blueprints", false},

		{"empty", "", true},
		{"relative", "Game/Characters", true},
		{"traversal", "/Game/../Engine", true},
		{"backslash", "/Game\\Characters", true},
		{"control char", "/Game\x01", true},
		{"too long", "/" + strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContentPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateContentPath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		schemes []string
		wantErr bool
	}{
		{"redis://localhost:6379/0", []string{"redis", "rediss"}, false},
		{"rediss://cache.internal:6380", []string{"redis", "rediss"}, false},
		{"mongodb://localhost:27017", []string{"mongodb", "mongodb+srv"}, false},
		{"http://localhost", []string{"redis"}, true},
		{"", []string{"redis"}, true},
		{"localhost:6379", []string{"redis"}, true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input, tt.schemes...)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeInvalidCatalog,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeInitFailed,
		ErrCodeNoNodes,
		ErrCodeFinalizeFailed,
		ErrCodeCancelled,
		ErrCodeUnavailable,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}

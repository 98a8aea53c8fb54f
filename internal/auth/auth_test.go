package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetGeminiKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"

	t.Setenv("GEMINI_API_KEY", testKey)

	key, err := GetGeminiKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetGeminiKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	// Point HOME at a temp dir with no credentials file.
	t.Setenv("HOME", t.TempDir())

	if _, err := GetGeminiKey(); err == nil {
		t.Error("expected error when no API key source available")
	}
}

func TestGetStabilityKey(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "sk-test")
	key, err := GetStabilityKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("expected sk-test, got %q", key)
	}

	t.Setenv("STABILITY_API_KEY", "")
	os.Unsetenv("STABILITY_API_KEY")
	if _, err := GetStabilityKey(); err == nil {
		t.Error("expected error without STABILITY_API_KEY")
	}
}

func TestGetCredentialPath(t *testing.T) {
	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".yardstage", "credentials.gpg")
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}

func TestClassifyErrorByMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ValidationErrorType
	}{
		{"invalid key", errors.New("API key not valid. Please pass a valid key."), ErrTypeInvalidKey},
		{"quota", errors.New("resource exhausted: quota exceeded"), ErrTypeQuotaExceeded},
		{"network", errors.New("dial tcp: no such host"), ErrTypeNetworkError},
		{"unknown", errors.New("something strange"), ErrTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if got.Type != tt.want {
				t.Errorf("classifyError(%v).Type = %d, want %d", tt.err, got.Type, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error must wrap the original")
			}
		})
	}
}

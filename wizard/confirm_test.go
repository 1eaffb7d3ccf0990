package wizard

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshyorko/depclean/pretty"
)

func withInput(t *testing.T, text string, interactive bool) {
	t.Helper()
	originalInput, originalInteractive := input, pretty.Interactive
	input, pretty.Interactive = strings.NewReader(text), interactive
	t.Cleanup(func() {
		input, pretty.Interactive = originalInput, originalInteractive
	})
}

func TestConfirmWithForce(t *testing.T) {
	withInput(t, "", false)
	result, err := Confirm("Test question", true)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !result {
		t.Error("Expected true when force is set")
	}
}

func TestConfirmNonInteractiveWithoutForce(t *testing.T) {
	withInput(t, "y\n", false)
	result, err := Confirm("Test question", false)
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Errorf("Expected ErrConfirmationRequired, got: %v", err)
	}
	if result {
		t.Error("Expected false when non-interactive without force")
	}
}

func TestConfirmReadsAnswers(t *testing.T) {
	cases := []struct {
		reply    string
		expected bool
	}{
		{"y\n", true},
		{"Y\r\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\ny\n", true},
	}
	for _, each := range cases {
		withInput(t, each.reply, true)
		result, err := Confirm("Proceed", false)
		if err != nil {
			t.Errorf("reply %q gave error %v", each.reply, err)
		}
		if result != each.expected {
			t.Errorf("reply %q gave %v, expected %v", each.reply, result, each.expected)
		}
	}
}

func TestConfirmOverwriteOnlyAsksForExistingFiles(t *testing.T) {
	folder := t.TempDir()
	existing := filepath.Join(folder, "p-cleaned.spdx.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	withInput(t, "", false)

	result, err := ConfirmOverwrite(false, filepath.Join(folder, "fresh.json"))
	if err != nil || !result {
		t.Errorf("fresh files need no confirmation, got %v, %v", result, err)
	}
	result, err = ConfirmOverwrite(false, existing)
	if !errors.Is(err, ErrConfirmationRequired) || result {
		t.Errorf("existing file needs confirmation, got %v, %v", result, err)
	}
	result, err = ConfirmOverwrite(true, existing)
	if err != nil || !result {
		t.Errorf("force overrides confirmation, got %v, %v", result, err)
	}
}

func TestSecretsNeedTerminal(t *testing.T) {
	withInput(t, "", false)
	_, err := AskSecret("API secret")
	if !errors.Is(err, ErrNoTerminal) {
		t.Errorf("Expected ErrNoTerminal, got: %v", err)
	}
}

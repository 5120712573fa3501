package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/marks/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		tokenUser, tokenTTL = "", 24*time.Hour
		importFile, importUser = "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "marks ") {
		t.Errorf("version output = %q", out)
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("MARKS_JWT_SECRET", "cli-secret")

	out, err := run(t, "token", "--user", "alice", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}

	userID, err := auth.NewVerifier([]byte("cli-secret")).UserID(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if userID != "alice" {
		t.Errorf("subject = %q, want alice", userID)
	}
}

func TestTokenCommandRequiresUser(t *testing.T) {
	t.Setenv("MARKS_JWT_SECRET", "cli-secret")
	if _, err := run(t, "token"); err == nil {
		t.Error("token without --user should fail")
	}
}

func TestImportCommandRequiresFlags(t *testing.T) {
	if _, err := run(t, "import", "--file", "bookmarks.yaml"); err == nil {
		t.Error("import without --user should fail")
	}
}

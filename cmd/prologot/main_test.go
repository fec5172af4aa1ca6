package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--quiet"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	kb := writeFile(t, "family.pl", "parent(tom, bob).\nparent(tom, liz).\n")

	out, err := execute(t, "query", "parent(tom, X)", kb)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if want := "X = bob ;\nX = liz.\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = execute(t, "query", "parent(liz, _)", kb)
	if !errors.Is(err, errFailed) {
		t.Errorf("err = %v, want errFailed", err)
	}
	if out != "false.\n" {
		t.Errorf("output = %q, want false.", out)
	}
}

func TestQueryCommandMissingFile(t *testing.T) {
	_, err := execute(t, "query", "true", filepath.Join(t.TempDir(), "missing.pl"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRunCommand(t *testing.T) {
	script := writeFile(t, "check.lua", `
		assert(prolog.is_initialized())
		assert(prolog.add_fact("seen(lua)"))
		assert(prolog.query("seen(lua)"))
	`)
	if _, err := execute(t, "run", script); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	failing := writeFile(t, "fail.lua", `error("boom")`)
	if _, err := execute(t, "run", failing); err == nil {
		t.Fatal("expected a Lua error")
	}
}

func TestScriptMode(t *testing.T) {
	script := writeFile(t, "session.txt", "/assert colour(red)\ncolour(red)\n/quit\n")
	scriptFile = script
	t.Cleanup(func() { scriptFile = "" })
	if _, err := execute(t); err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

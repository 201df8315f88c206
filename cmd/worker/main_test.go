package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{"ingest", "normalize", "sync", "serve"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "ordenes.json")
	payload := `{"data": [
		{"Orden Electronica": "OE-1", "Monto Total Entrega": "1,500.00", "Proveedor": "Acme"},
		{"Proveedor": "Sin orden"}
	]}`

	if err := os.WriteFile(input, []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(dir, "out.json")

	var out bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"normalize", "--log-level", "error", "--input", input, "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{"Found: 2, accepted: 1, rejected: 1", "| OE-1", "missing_order_id"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected JSON output file: %v", err)
	}
}

func TestNormalizeCommand_RequiresInput(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"normalize"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error without --input")
	}
}

func TestIngestCommand_PersistWithoutStorage(t *testing.T) {
	t.Setenv("PROCFEED_DATABASE_DSN", "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"ingest", "--log-level", "error", "--persist", "https://datos.gob.pe/x.json"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no storage") {
		t.Errorf("expected persistence error, got %v", err)
	}
}

package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customerCSV = "Location Import ID,Customer Name,Street,City,Tags\n" +
	"L1,Acme,123 Main St Suite 200,Atlanta,vip\n" +
	"L2,Beta,45 Oak Ave,Macon,\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_Recipe(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Customer.csv", customerCSV)

	out, _, err := execute(t, "run", "--recipe", "customer", "--input", in)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows to csv "+filepath.Join(dir, "Updated_Customer.csv"))
	assert.Contains(t, out, "dropped: location_import_id, tags")

	got, err := os.ReadFile(filepath.Join(dir, "Updated_Customer.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"customer_name,city,location_street,unit\n"+
			"Acme,Atlanta,123 Main St,Suite 200\n"+
			"Beta,Macon,45 Oak Ave,\n",
		string(got))
}

func TestRun_RecipeDropOverride(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Customer.csv", customerCSV)
	list := writeFile(t, dir, "drop.txt", "# extra\ncustomer_name\n")
	out := filepath.Join(dir, "out.csv")

	_, _, err := execute(t, "run", "-r", "customer", "-i", in, "-o", out, "--drop", "tags", "--drop-file", list)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"location_import_id,city,location_street,unit\n"+
			"L1,Atlanta,123 Main St,Suite 200\n"+
			"L2,Macon,45 Oak Ave,\n",
		string(got))
}

func TestRun_ConfigFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "pricing.csv", "Description,Price\nHVAC1 Flat rate diagnostic,89\n")
	cfg := writeFile(t, dir, "pricing.yaml", `
job: pricing
source:
  kind: file
  file:
    path: does-not-matter.csv
parser:
  kind: csv
transform:
  - kind: normalize_headers
  - kind: split_delimiter
    options:
      column: description
      into: [code, description]
storage:
  kind: csv
  file:
    path: ignored.csv
`)
	out := filepath.Join(dir, "priced.csv")

	_, _, err := execute(t, "run", "--config", cfg, "--input", in, "--output", out, "--workers", "2")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "description,price,code\nFlat rate diagnostic,89,HVAC1\n", string(got))
}

func TestRun_SQLiteSink(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Customer.csv", customerCSV)

	out, _, err := execute(t, "run", "--recipe", "customer", "--input", in,
		"--sink", "sqlite", "--dsn", filepath.Join(dir, "c.db"), "--table", "customers", "--auto-create")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows to sqlite customers")
}

func TestRun_FlagErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Customer.csv", customerCSV)
	cfg := writeFile(t, dir, "p.json", `{"job":"x"}`)

	tests := []struct {
		name string
		args []string
	}{
		{"neither config nor recipe", []string{"run", "--input", in}},
		{"both config and recipe", []string{"run", "--config", cfg, "--recipe", "customer"}},
		{"recipe without input", []string{"run", "--recipe", "customer"}},
		{"unknown recipe", []string{"run", "--recipe", "invoices", "--input", in}},
		{"drop with config", []string{"run", "--config", cfg, "--drop", "a"}},
		{"missing input file", []string{"run", "--recipe", "customer", "--input", filepath.Join(dir, "nope.csv")}},
		{"unknown metrics backend", []string{"--metrics-backend", "graphite", "run", "--recipe", "customer", "--input", in}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{
  "job": "customer",
  "source": {"kind": "file", "file": {"path": "Customer.csv"}},
  "parser": {"kind": "csv"},
  "transform": [
    {"kind": "normalize_headers"},
    {"kind": "split_pattern", "options": {"column": "street", "into": ["location_street", "unit"]}}
  ],
  "storage": {"kind": "csv", "file": {"path": "out.csv"}}
}`)
	out, _, err := execute(t, "validate", "--config", good)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	bad := writeFile(t, dir, "bad.json", `{"job": "x", "source": {"kind": "ftp"}, "storage": {"kind": "csv"}}`)
	out, _, err = execute(t, "validate", "--config", bad)
	require.Error(t, err)
	assert.Contains(t, out, "error: source.kind")
	assert.Contains(t, out, "error: storage.file.path")

	badRule := writeFile(t, dir, "rule.toml", `
job = "x"
[source]
kind = "file"
[source.file]
path = "in.csv"
[[transform]]
kind = "split_pattern"
[transform.options]
column = "street"
pattern = "^(.*)$"
into = ["a", "b"]
[storage]
kind = "csv"
[storage.file]
path = "out.csv"
`)
	_, _, err = execute(t, "validate", "--config", badRule)
	assert.Error(t, err)
}

func TestHeaders(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "h.csv", "Flat Rate (Non-Contract),Café Name,Cafe Name\n1,2,3\n")

	out, errOut, err := execute(t, "headers", "--input", in)
	require.NoError(t, err)
	assert.Equal(t,
		"Flat Rate (Non-Contract) -> flat_rate_non_contract\n"+
			"Café Name -> caf_name\n"+
			"Cafe Name -> cafe_name\n",
		out)
	assert.Empty(t, errOut)

	out, errOut, err = execute(t, "headers", "--input", in, "--fold-accents")
	require.NoError(t, err)
	assert.Contains(t, out, "Café Name -> cafe_name\n")
	assert.Contains(t, errOut, `both normalize to "cafe_name"`)
}

func TestHeaders_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Total   Base--Cost\n10\n")
	}))
	defer srv.Close()

	out, _, err := execute(t, "headers", "--input", srv.URL+"/prices.csv")
	require.NoError(t, err)
	assert.Equal(t, "Total   Base--Cost -> total_base_cost\n", out)
}

//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kuro68k/kibom/internal/bom"
	"github.com/kuro68k/kibom/internal/lookup"
)

const testExport = `<?xml version="1.0" encoding="UTF-8"?>
<export version="D">
  <design>
    <source>psu.sch</source>
    <date>2024-03-01</date>
    <sheet number="1" name="/">
      <title_block>
        <title>Bench PSU</title>
        <rev>B</rev>
      </title_block>
    </sheet>
  </design>
  <components>
    <comp ref="R10"><value>10k</value><footprint>Resistor_SMD:R_0603_1608Metric</footprint></comp>
    <comp ref="R2"><value>10k</value><footprint>Resistor_SMD:R_0603_1608Metric</footprint></comp>
    <comp ref="R1"><value>4.7k</value><footprint>Resistor_SMD:R_0603_1608Metric</footprint></comp>
    <comp ref="C1"><value>100n</value><footprint>Capacitor_SMD:C_0603_1608Metric</footprint></comp>
    <comp ref="C2"><value>100n</value><footprint>Capacitor_SMD:C_0603_1608Metric</footprint>
      <fields><field name="BOM_NOFIT">1</field></fields>
    </comp>
    <comp ref="MH1"><value>M3</value><footprint>MountingHole:no part</footprint></comp>
  </components>
</export>`

const testTablesYAML = `
substitutions:
  - search: R_0603
    replace: "0603"
  - search: C_0603
    replace: 0603_X7R
defaults:
  - designator: R
    long_name: Resistors
    default_type: 0603 1%
  - designator: C
    long_name: Capacitors
    default_type: N/A
`

// writeFixtures writes the sample export and tables.yaml into a temp dir
// and returns the export path.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lookup.YAMLFile), []byte(testTablesYAML), 0o644))
	path := filepath.Join(dir, "psu.xml")
	require.NoError(t, os.WriteFile(path, []byte(testExport), 0o644))
	return path
}

func testEnv(t *testing.T) *bomEnv {
	t.Helper()
	tables, err := lookup.LoadDir(filepath.Dir(writeFixtures(t)))
	require.NoError(t, err)
	return &bomEnv{Tables: tables, Options: bom.DefaultOptions()}
}

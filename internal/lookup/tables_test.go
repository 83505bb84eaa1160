package lookup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubs() *Substitutions {
	return NewSubstitutions([]Substitution{
		{Search: "0603", Replace: "0603_SMD"},
		{Search: "R_0", Replace: "resistor"},
		{Search: "SOIC-8", Replace: "SOIC8"},
	})
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	s := testSubs()
	tests := []struct {
		name          string
		in            string
		removeUnknown bool
		strip         bool
		want          string
	}{
		{"first containment match wins", "R_0603_1608Metric", false, false, "0603_SMD"},
		{"match with underscore strip", "C_0603", false, true, "0603 SMD"},
		{"later entry", "Package_SO:SOIC-8_3.9x4.9mm", false, false, "SOIC8"},
		{"unmatched passes through", "TO-220", false, false, "TO-220"},
		{"unmatched stripped", "Pin_Header_1x02", false, true, "Pin Header 1x02"},
		{"unmatched removed", "TO-220", true, true, ""},
		{"exact equality not required", "xx0603yy", true, false, "0603_SMD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.Substitute(tt.in, tt.removeUnknown, tt.strip))
		})
	}
}

func TestSubstitute_NilTable(t *testing.T) {
	t.Parallel()

	var s *Substitutions
	assert.Equal(t, "A_B", s.Substitute("A_B", false, false))
	assert.Equal(t, "", s.Substitute("A_B", true, false))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Entries())
}

func TestNewSubstitutions_CopiesInput(t *testing.T) {
	t.Parallel()

	in := []Substitution{{Search: "a", Replace: "b"}}
	s := NewSubstitutions(in)
	in[0].Replace = "changed"
	assert.Equal(t, "b", s.Substitute("a", false, false))
}

func TestDefaults_Lookup(t *testing.T) {
	t.Parallel()

	d := NewDefaults([]Default{
		{Designator: "R", LongName: "Resistors", DefaultType: "0603 1%"},
		{Designator: "U", LongName: "Integrated circuits", DefaultType: "N/A"},
		{Designator: "R", LongName: "Duplicate", DefaultType: "x"},
	})

	r, ok := d.Lookup("R")
	require.True(t, ok)
	assert.Equal(t, "Resistors", r.LongName)
	assert.True(t, r.HasDefault())
	assert.Equal(t, "Resistors (all 0603 1% unless otherwise stated)", r.Heading())

	u, ok := d.Lookup("U")
	require.True(t, ok)
	assert.False(t, u.HasDefault())
	assert.Equal(t, "Integrated circuits", u.Heading())

	_, ok = d.Lookup("Q")
	assert.False(t, ok)
	assert.Equal(t, 2, d.Len())
	assert.Len(t, d.All(), 2)

	var none *Defaults
	_, ok = none.Lookup("R")
	assert.False(t, ok)
}

func TestDefault_HasDefaultCaseInsensitive(t *testing.T) {
	t.Parallel()

	assert.False(t, Default{DefaultType: "n/a"}.HasDefault())
	assert.False(t, Default{DefaultType: "  "}.HasDefault())
	assert.True(t, Default{DefaultType: "X7R"}.HasDefault())
}

func TestLoadSubstitutions(t *testing.T) {
	t.Parallel()

	in := "# footprint substitutions\n\nR_0603\t0603\n  C_0805 \t 0805 \r\n"
	s, err := LoadSubstitutions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Substitution{
		{Search: "R_0603", Replace: "0603"},
		{Search: "C_0805", Replace: "0805"},
	}, s.Entries())
}

func TestLoadSubstitutions_MissingTab(t *testing.T) {
	t.Parallel()

	_, err := LoadSubstitutions(strings.NewReader("ok\tfine\nbroken line\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	in := `# designator / long name / default type
R
Resistors
0603 1%

C
Capacitors
N/A
`
	d, err := LoadDefaults(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	c, ok := d.Lookup("C")
	require.True(t, ok)
	assert.Equal(t, "Capacitors", c.LongName)
	assert.False(t, c.HasDefault())
}

func TestLoadDefaults_IncompleteRecord(t *testing.T) {
	t.Parallel()

	_, err := LoadDefaults(strings.NewReader("R\nResistors\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing default type")
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	in := `
substitutions:
  - search: R_0603
    replace: "0603"
defaults:
  - designator: R
    long_name: Resistors
    default_type: 0603 1%
`
	tables, err := LoadYAML(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Substitutions.Len())
	r, ok := tables.Defaults.Lookup("R")
	require.True(t, ok)
	assert.Equal(t, "0603 1%", r.DefaultType)
}

func TestLoadYAML_EmptySearch(t *testing.T) {
	t.Parallel()

	_, err := LoadYAML(strings.NewReader("substitutions:\n  - search: \"\"\n    replace: x\n"))
	require.Error(t, err)
}

func TestLoadDir_TextFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SubsFile), []byte("R_0603\t0603\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultsFile), []byte("R\nResistors\nN/A\n"), 0o644))

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Substitutions.Len())
	assert.Equal(t, 1, tables.Defaults.Len())
}

func TestLoadDir_PrefersYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, YAMLFile), []byte("defaults:\n  - designator: U\n    long_name: ICs\n    default_type: N/A\n"), 0o644))

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	_, ok := tables.Defaults.Lookup("U")
	assert.True(t, ok)
	assert.Equal(t, 0, tables.Substitutions.Len())
}

func TestLoadDir_MissingFiles(t *testing.T) {
	t.Parallel()

	tables, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), SubsFile)
	assert.Contains(t, err.Error(), DefaultsFile)
	assert.Zero(t, tables.Substitutions.Len())
	assert.Zero(t, tables.Defaults.Len())
}

func TestLoadDir_OnlySubstitutions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SubsFile), []byte("R_0603\t0603\n"), 0o644))

	tables, err := LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), DefaultsFile)
	assert.NotContains(t, err.Error(), SubsFile)

	require.Equal(t, 1, tables.Substitutions.Len())
	assert.Equal(t, "0603", tables.Substitutions.Substitute("Resistor_SMD:R_0603_1608Metric", false, false))
	assert.Zero(t, tables.Defaults.Len())
}

func TestLoadDir_OnlyDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultsFile), []byte("R\nResistors\n0603 1%\n"), 0o644))

	tables, err := LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), SubsFile)

	def, ok := tables.Defaults.Lookup("R")
	require.True(t, ok)
	assert.Equal(t, "Resistors", def.LongName)
	assert.Zero(t, tables.Substitutions.Len())
}

func TestLoadDir_ParseErrorStillFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SubsFile), []byte("no tab here\n"), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
}

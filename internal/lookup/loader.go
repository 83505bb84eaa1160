package lookup

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// File names searched by LoadDir.
const (
	SubsFile     = "bom_subs.txt"
	DefaultsFile = "bom_defaults.txt"
	YAMLFile     = "tables.yaml"
)

// LoadSubstitutions reads the tab-separated substitution format: one
// "search<TAB>replace" pair per line. Blank lines and lines starting with
// '#' are skipped.
func LoadSubstitutions(r io.Reader) (*Substitutions, error) {
	var entries []Substitution
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r\n")
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		search, replace, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, eris.Errorf("lookup: substitutions line %d: missing tab separator", lineNo)
		}
		search = strings.TrimSpace(search)
		if search == "" {
			return nil, eris.Errorf("lookup: substitutions line %d: empty search string", lineNo)
		}
		entries = append(entries, Substitution{Search: search, Replace: strings.TrimSpace(replace)})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "lookup: read substitutions")
	}
	return NewSubstitutions(entries), nil
}

// LoadDefaults reads the defaults format: records of three lines holding the
// designator, the long name and the default part type ("N/A" for none).
// Blank lines and '#' comments are allowed between records.
func LoadDefaults(r io.Reader) (*Defaults, error) {
	var entries []Default
	sc := bufio.NewScanner(r)
	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSpace(sc.Text()), true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d := Default{Designator: line}
		if d.LongName, ok = next(); !ok {
			return nil, eris.Errorf("lookup: defaults line %d: record %q missing long name", lineNo, d.Designator)
		}
		if d.DefaultType, ok = next(); !ok {
			return nil, eris.Errorf("lookup: defaults line %d: record %q missing default type", lineNo, d.Designator)
		}
		entries = append(entries, d)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "lookup: read defaults")
	}
	return NewDefaults(entries), nil
}

// yamlTables is the on-disk shape of tables.yaml.
type yamlTables struct {
	Substitutions []Substitution `yaml:"substitutions"`
	Defaults      []Default      `yaml:"defaults"`
}

// LoadYAML reads both tables from a single YAML document.
func LoadYAML(r io.Reader) (Tables, error) {
	var doc yamlTables
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, eris.Wrap(err, "lookup: parse yaml tables")
	}
	for i, s := range doc.Substitutions {
		if strings.TrimSpace(s.Search) == "" {
			return Tables{}, eris.Errorf("lookup: substitution %d: empty search string", i)
		}
	}
	for i, d := range doc.Defaults {
		if strings.TrimSpace(d.Designator) == "" {
			return Tables{}, eris.Errorf("lookup: default %d: empty designator", i)
		}
	}
	return Tables{
		Substitutions: NewSubstitutions(doc.Substitutions),
		Defaults:      NewDefaults(doc.Defaults),
	}, nil
}

// LoadDir loads the tables from dir. tables.yaml is used when present;
// otherwise bom_subs.txt and bom_defaults.txt are read independently. A
// missing text file leaves its table empty: the tables that did load are
// returned together with an error matching fs.ErrNotExist that names each
// missing file. Any other failure returns empty tables.
func LoadDir(dir string) (Tables, error) {
	yamlPath := filepath.Join(dir, YAMLFile)
	if f, err := os.Open(yamlPath); err == nil { //nolint:gosec // user-supplied tables dir
		defer f.Close() //nolint:errcheck
		t, err := LoadYAML(f)
		return t, eris.Wrapf(err, "lookup: load %s", yamlPath)
	} else if !os.IsNotExist(err) {
		return Tables{}, eris.Wrapf(err, "lookup: open %s", yamlPath)
	}

	var missing []error
	subs, err := loadFile(filepath.Join(dir, SubsFile), LoadSubstitutions)
	if errors.Is(err, fs.ErrNotExist) {
		missing = append(missing, err)
	} else if err != nil {
		return Tables{}, err
	}
	defs, err := loadFile(filepath.Join(dir, DefaultsFile), LoadDefaults)
	if errors.Is(err, fs.ErrNotExist) {
		missing = append(missing, err)
	} else if err != nil {
		return Tables{}, err
	}
	return Tables{Substitutions: subs, Defaults: defs}, errors.Join(missing...)
}

func loadFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path) //nolint:gosec // user-supplied tables dir
	if err != nil {
		return zero, eris.Wrapf(err, "lookup: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	v, err := parse(f)
	if err != nil {
		return zero, eris.Wrapf(err, "lookup: load %s", path)
	}
	return v, nil
}

package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"strswitch/internal/cases"
	"strswitch/internal/selector"
)

// TableExt is the suffix of case-table files.
const TableExt = ".switch.toml"

// Switch is one loaded case table together with everything needed to plan it.
type Switch struct {
	Name    string
	Path    string
	Request selector.Request
}

type tableFile struct {
	Name      string         `toml:"name"`
	Default   string         `toml:"default"`
	Null      string         `toml:"null"`
	Normalize string         `toml:"normalize"`
	Scrutinee scrutineeEntry `toml:"scrutinee"`
	Caps      cases.Caps     `toml:"capabilities"`
	Cases     []caseEntry    `toml:"case"`
}

type scrutineeEntry struct {
	Kind     string `toml:"kind"`
	Nullable bool   `toml:"nullable"`
}

type caseEntry struct {
	Key    string  `toml:"key"`
	Units  []int64 `toml:"units"`
	Target string  `toml:"target"`
}

// LoadTable reads and parses a case-table file.
func LoadTable(path string, opts selector.Options) (*Switch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), TableExt)
	sw, err := ParseTable(name, string(data), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sw.Path = path
	return sw, nil
}

// ParseTable decodes a case table. name is used unless the table sets its own.
// Capabilities that the table leaves out are assumed present.
func ParseTable(name, data string, opts selector.Options) (*Switch, error) {
	var f tableFile
	meta, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if !meta.IsDefined("default") || strings.TrimSpace(f.Default) == "" {
		return nil, fmt.Errorf("missing default")
	}
	if f.Name != "" {
		name = f.Name
	}

	kind, err := cases.ParseKind(f.Scrutinee.Kind)
	if err != nil {
		return nil, fmt.Errorf("[scrutinee].kind: %w", err)
	}
	caps := f.Caps
	for _, c := range []struct {
		key string
		dst *bool
	}{
		{"length", &caps.Length},
		{"index", &caps.IndexedChar},
		{"equality", &caps.SequenceEquality},
		{"as_span", &caps.AsSpan},
	} {
		if !meta.IsDefined("capabilities", c.key) {
			*c.dst = true
		}
	}

	normalize, err := normalizer(f.Normalize)
	if err != nil {
		return nil, err
	}
	tbl := &cases.Table{Default: cases.Target(f.Default), Null: cases.Target(f.Null)}
	for i, c := range f.Cases {
		key, err := c.key(normalize)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		tbl.Cases = append(tbl.Cases, cases.Case{Key: key, Target: cases.Target(c.Target)})
	}

	return &Switch{
		Name: name,
		Request: selector.Request{
			Table:     tbl,
			Scrutinee: cases.Scrutinee{Kind: kind, Nullable: f.Scrutinee.Nullable},
			Caps:      caps,
			Options:   opts,
		},
	}, nil
}

func normalizer(form string) (func(string) string, error) {
	switch strings.ToLower(form) {
	case "":
		return func(s string) string { return s }, nil
	case "nfc":
		return norm.NFC.String, nil
	case "nfd":
		return norm.NFD.String, nil
	case "nfkc":
		return norm.NFKC.String, nil
	case "nfkd":
		return norm.NFKD.String, nil
	default:
		return nil, fmt.Errorf("invalid normalize: %q (expected: nfc|nfd|nfkc|nfkd)", form)
	}
}

// key builds the case key. Raw units bypass normalization so that lone
// surrogates survive.
func (c caseEntry) key(normalize func(string) string) (cases.Key, error) {
	if c.Units == nil {
		return cases.KeyOf(normalize(c.Key)), nil
	}
	if c.Key != "" {
		return nil, errors.New("key and units are mutually exclusive")
	}
	key := make(cases.Key, len(c.Units))
	for i, u := range c.Units {
		v, err := safecast.Conv[uint16](u)
		if err != nil {
			return nil, fmt.Errorf("units[%d]: %w", i, err)
		}
		key[i] = v
	}
	return key, nil
}

// CollectTables expands directories into the case-table files they contain
// and returns every path once, sorted.
func CollectTables(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), TableExt) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

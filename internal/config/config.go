// Package config resolves the generator configuration document: scalar
// settings, wire groups, naming and width overrides, and the submodule tree.
package config

import "strings"

// Defaults applied when the document omits the field.
const (
	DefaultOutputDir      = "./"
	DefaultDebuggerFile   = "VgaDebugger.v"
	DefaultHeaderLines    = 0
	DefaultTemplateWidth  = 80
	DefaultTemplateHeight = 30
)

// MaxCells bounds template_width x template_height. The memory image has
// one line per cell, padded to the next power of two.
const MaxCells = 1 << 24

// Pair addresses one wire of one template block.
type Pair struct {
	Block string `json:"block"`
	Wire  string `json:"wire"`
}

// Group is a named list of wires other sections refer to as "*name".
type Group struct {
	Name  string
	Wires []Pair
}

// Submodule is a declared scope of the generated hierarchy.
type Submodule struct {
	Name   string
	Parent string
	Wires  []Pair
}

// Config is the resolved configuration document.
type Config struct {
	// TemplateFile is the path of the ASCII template
	TemplateFile string

	// OutputDir always ends with a slash
	OutputDir    string
	MemFile      string
	DbgHeader    string
	DebuggerFile string

	// ModuleName is the root of the module hierarchy
	ModuleName string

	HeaderLines    int
	TemplateWidth  int
	TemplateHeight int

	// Prefixes holds wire_prefix entries and block_prefix defaults
	Prefixes Overrides[string]
	// Suffixes holds wire_suffix entries and block_suffix defaults
	Suffixes Overrides[string]
	// CodeNames holds wire_name entries
	CodeNames Overrides[string]
	// LenBits holds len_bits entries
	LenBits Overrides[int]

	// Groups and Submodules keep declaration order
	Groups     []Group
	Submodules []Submodule

	groupIndex     map[string]int
	submoduleIndex map[string]int
}

// DefaultConfig returns a configuration with every optional field at its
// default and no required field set.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      DefaultOutputDir,
		DebuggerFile:   DefaultDebuggerFile,
		HeaderLines:    DefaultHeaderLines,
		TemplateWidth:  DefaultTemplateWidth,
		TemplateHeight: DefaultTemplateHeight,
		groupIndex:     map[string]int{},
		submoduleIndex: map[string]int{},
	}
}

// Group returns the group declared under name.
func (c *Config) Group(name string) (Group, bool) {
	i, ok := c.groupIndex[name]
	if !ok {
		return Group{}, false
	}
	return c.Groups[i], true
}

// Submodule returns the submodule declared under name.
func (c *Config) Submodule(name string) (Submodule, bool) {
	i, ok := c.submoduleIndex[name]
	if !ok {
		return Submodule{}, false
	}
	return c.Submodules[i], true
}

// FindSubmoduleOfWire returns the first declared submodule listing the
// wire, or the root module name when none does.
func (c *Config) FindSubmoduleOfWire(block, wire string) string {
	for _, sub := range c.Submodules {
		for _, p := range sub.Wires {
			if p.Block == block && p.Wire == wire {
				return sub.Name
			}
		}
	}
	return c.ModuleName
}

// ResolveFullName returns prefix + wire + suffix, each side picking the
// exact wire entry over the block default over the empty string.
func (c *Config) ResolveFullName(block, wire string) string {
	prefix := c.Prefixes.Lookup(block, wire, nil)
	suffix := c.Suffixes.Lookup(block, wire, nil)
	return prefix + wire + suffix
}

// ResolveCodeName returns the right-hand side identifier used when the
// debug wire is assigned. It defaults to the full name.
func (c *Config) ResolveCodeName(block, wire, fullName string) string {
	return c.CodeNames.Lookup(block, wire, func() string { return fullName })
}

// ResolveLenBits returns the bit width of a wire shown with lenHex digits.
func (c *Config) ResolveLenBits(block, wire string, lenHex int) int {
	return c.LenBits.Lookup(block, wire, func() int { return LenBitsForHex(lenHex) })
}

// LenBitsForHex is the width implied by the placeholder run: a single
// digit is a 1-bit flag, longer runs are 4 bits per digit.
func LenBitsForHex(lenHex int) int {
	if lenHex == 1 {
		return 1
	}
	return lenHex * 4
}

// OutputPath joins the output directory and a file name.
func (c *Config) OutputPath(name string) string {
	return c.OutputDir + name
}

func withTrailingSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

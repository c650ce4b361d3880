// Package config implements the schema-driven property bag described in
// spec §4.I / §6: a fixed, typed set of diffing options consulted by the
// architecture adapters, the function/data differs, the display formatter
// and the aggregator. Properties are addressed by stable string id so
// callers (a GUI settings panel, a CLI flag parser) never need to know the
// Go field names.
package config

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// PropertyType is the type tag of a Property's value.
type PropertyType int

const (
	TypeBool PropertyType = iota
	TypeChoice
)

// Property describes one entry in the schema: its type, default, and (for
// TypeChoice) the enumerated set of legal values.
type Property struct {
	ID      string
	Type    PropertyType
	Choices []string // only for TypeChoice
	Default string   // canonical string form of the default value
}

// FunctionRelocDiffs controls how aggressively relocation differences are
// treated as instruction differences (§6 functionRelocDiffs).
type FunctionRelocDiffs string

const (
	RelocDiffsNone         FunctionRelocDiffs = "none"
	RelocDiffsNameAddress  FunctionRelocDiffs = "name_address"
	RelocDiffsDataValue    FunctionRelocDiffs = "data_value"
	RelocDiffsAll          FunctionRelocDiffs = "all"
)

// ArmArchVersion selects the ARM32 instruction subset (§6 arm.archVersion).
type ArmArchVersion string

const (
	ArmAuto ArmArchVersion = "auto"
	ArmV4T  ArmArchVersion = "v4t"
	ArmV5TE ArmArchVersion = "v5te"
	ArmV6K  ArmArchVersion = "v6k"
)

// ArmR9Usage selects what role r9 plays in the target ABI (§6 arm.r9Usage).
type ArmR9Usage string

const (
	ArmR9GeneralPurpose ArmR9Usage = "generalPurpose"
	ArmR9StaticBase     ArmR9Usage = "sb"
	ArmR9TLS            ArmR9Usage = "tr"
)

// MipsAbi selects the MIPS calling convention (§6 mips.abi).
type MipsAbi string

const (
	MipsAbiAuto MipsAbi = "auto"
	MipsAbiO32  MipsAbi = "o32"
	MipsAbiN32  MipsAbi = "n32"
	MipsAbiN64  MipsAbi = "n64"
)

// MipsInstrCategory selects the MIPS instruction extension set (§6 mips.instrCategory).
type MipsInstrCategory string

const (
	MipsCategoryAuto        MipsInstrCategory = "auto"
	MipsCategoryCPU         MipsInstrCategory = "cpu"
	MipsCategoryRSP         MipsInstrCategory = "rsp"
	MipsCategoryR3000GTE    MipsInstrCategory = "r3000gte"
	MipsCategoryR4000Allegrex MipsInstrCategory = "r4000allegrex"
	MipsCategoryR5900       MipsInstrCategory = "r5900"
)

// X86Formatter selects x86 operand syntax (§6 x86.formatter).
type X86Formatter string

const (
	X86Intel X86Formatter = "intel"
	X86Gas   X86Formatter = "gas"
	X86Nasm  X86Formatter = "nasm"
	X86Masm  X86Formatter = "masm"
)

// Config is the resolved, typed view of the property bag. Diff() and the
// architecture adapters consult this directly rather than doing
// string-keyed lookups on every instruction.
type Config struct {
	FunctionRelocDiffs  FunctionRelocDiffs
	AnalyzeDataFlow     bool
	ShowDataFlow        bool
	SpaceBetweenArgs    bool
	CombineDataSections bool
	CombineTextSections bool

	ArmArchVersion   ArmArchVersion
	ArmUnifiedSyntax bool
	ArmAvRegisters   bool
	ArmR9Usage       ArmR9Usage
	ArmSlUsage       bool
	ArmFpUsage       bool
	ArmIpUsage       bool

	MipsAbi           MipsAbi
	MipsInstrCategory MipsInstrCategory
	MipsRegisterPrefix bool

	PpcCalculatePoolRelocations bool

	X86Formatter X86Formatter
}

// Default returns the configuration with every property at its documented
// default (§6).
func Default() *Config {
	return &Config{
		FunctionRelocDiffs:          RelocDiffsNameAddress,
		AnalyzeDataFlow:             false,
		ShowDataFlow:                true,
		SpaceBetweenArgs:            true,
		CombineDataSections:         false,
		CombineTextSections:         false,
		ArmArchVersion:              ArmAuto,
		ArmUnifiedSyntax:            false,
		ArmAvRegisters:              false,
		ArmR9Usage:                  ArmR9GeneralPurpose,
		ArmSlUsage:                  false,
		ArmFpUsage:                  false,
		ArmIpUsage:                  false,
		MipsAbi:                     MipsAbiAuto,
		MipsInstrCategory:           MipsCategoryAuto,
		MipsRegisterPrefix:          false,
		PpcCalculatePoolRelocations: true,
		X86Formatter:                X86Intel,
	}
}

// Separator returns the argument separator the display formatter should use
// between operands, honouring spaceBetweenArgs.
func (c *Config) Separator() string {
	if c.SpaceBetweenArgs {
		return ", "
	}
	return ","
}

// Properties is the authoritative schema table from spec §6, used both for
// validation (Set/Get) and for jsonschema generation (Schema).
var Properties = []Property{
	{ID: "functionRelocDiffs", Type: TypeChoice, Choices: []string{"none", "name_address", "data_value", "all"}, Default: "name_address"},
	{ID: "analyzeDataFlow", Type: TypeBool, Default: "false"},
	{ID: "showDataFlow", Type: TypeBool, Default: "true"},
	{ID: "spaceBetweenArgs", Type: TypeBool, Default: "true"},
	{ID: "combineDataSections", Type: TypeBool, Default: "false"},
	{ID: "combineTextSections", Type: TypeBool, Default: "false"},
	{ID: "arm.archVersion", Type: TypeChoice, Choices: []string{"auto", "v4t", "v5te", "v6k"}, Default: "auto"},
	{ID: "arm.unifiedSyntax", Type: TypeBool, Default: "false"},
	{ID: "arm.avRegisters", Type: TypeBool, Default: "false"},
	{ID: "arm.r9Usage", Type: TypeChoice, Choices: []string{"generalPurpose", "sb", "tr"}, Default: "generalPurpose"},
	{ID: "arm.slUsage", Type: TypeBool, Default: "false"},
	{ID: "arm.fpUsage", Type: TypeBool, Default: "false"},
	{ID: "arm.ipUsage", Type: TypeBool, Default: "false"},
	{ID: "mips.abi", Type: TypeChoice, Choices: []string{"auto", "o32", "n32", "n64"}, Default: "auto"},
	{ID: "mips.instrCategory", Type: TypeChoice, Choices: []string{"auto", "cpu", "rsp", "r3000gte", "r4000allegrex", "r5900"}, Default: "auto"},
	{ID: "mips.registerPrefix", Type: TypeBool, Default: "false"},
	{ID: "ppc.calculatePoolRelocations", Type: TypeBool, Default: "true"},
	{ID: "x86.formatter", Type: TypeChoice, Choices: []string{"intel", "gas", "nasm", "masm"}, Default: "intel"},
}

func findProperty(id string) (*Property, error) {
	for i := range Properties {
		if Properties[i].ID == id {
			return &Properties[i], nil
		}
	}
	return nil, &InvalidConfigError{ID: id, Reason: "unknown property id"}
}

// InvalidConfigError is returned by Set/Get for unknown ids or values
// outside a choice property's enumeration (§7 InvalidConfig).
type InvalidConfigError struct {
	ID     string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config property %q: %s", e.ID, e.Reason)
}

// Set validates and applies a string value to the named property.
func (c *Config) Set(id, value string) error {
	prop, err := findProperty(id)
	if err != nil {
		return err
	}
	switch prop.Type {
	case TypeBool:
		var b bool
		switch value {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return &InvalidConfigError{ID: id, Reason: fmt.Sprintf("expected true/false, got %q", value)}
		}
		return c.setBool(id, b)
	case TypeChoice:
		valid := false
		for _, choice := range prop.Choices {
			if choice == value {
				valid = true
				break
			}
		}
		if !valid {
			return &InvalidConfigError{ID: id, Reason: fmt.Sprintf("value %q not in %v", value, prop.Choices)}
		}
		return c.setChoice(id, value)
	default:
		return &InvalidConfigError{ID: id, Reason: "unhandled property type"}
	}
}

func (c *Config) setBool(id string, v bool) error {
	switch id {
	case "analyzeDataFlow":
		c.AnalyzeDataFlow = v
	case "showDataFlow":
		c.ShowDataFlow = v
	case "spaceBetweenArgs":
		c.SpaceBetweenArgs = v
	case "combineDataSections":
		c.CombineDataSections = v
	case "combineTextSections":
		c.CombineTextSections = v
	case "arm.unifiedSyntax":
		c.ArmUnifiedSyntax = v
	case "arm.avRegisters":
		c.ArmAvRegisters = v
	case "arm.slUsage":
		c.ArmSlUsage = v
	case "arm.fpUsage":
		c.ArmFpUsage = v
	case "arm.ipUsage":
		c.ArmIpUsage = v
	case "mips.registerPrefix":
		c.MipsRegisterPrefix = v
	case "ppc.calculatePoolRelocations":
		c.PpcCalculatePoolRelocations = v
	default:
		return &InvalidConfigError{ID: id, Reason: "not a bool property"}
	}
	return nil
}

func (c *Config) setChoice(id, v string) error {
	switch id {
	case "functionRelocDiffs":
		c.FunctionRelocDiffs = FunctionRelocDiffs(v)
	case "arm.archVersion":
		c.ArmArchVersion = ArmArchVersion(v)
	case "arm.r9Usage":
		c.ArmR9Usage = ArmR9Usage(v)
	case "mips.abi":
		c.MipsAbi = MipsAbi(v)
	case "mips.instrCategory":
		c.MipsInstrCategory = MipsInstrCategory(v)
	case "x86.formatter":
		c.X86Formatter = X86Formatter(v)
	default:
		return &InvalidConfigError{ID: id, Reason: "not a choice property"}
	}
	return nil
}

// Get returns the current string value of the named property.
func (c *Config) Get(id string) (string, error) {
	if _, err := findProperty(id); err != nil {
		return "", err
	}
	switch id {
	case "functionRelocDiffs":
		return string(c.FunctionRelocDiffs), nil
	case "analyzeDataFlow":
		return boolStr(c.AnalyzeDataFlow), nil
	case "showDataFlow":
		return boolStr(c.ShowDataFlow), nil
	case "spaceBetweenArgs":
		return boolStr(c.SpaceBetweenArgs), nil
	case "combineDataSections":
		return boolStr(c.CombineDataSections), nil
	case "combineTextSections":
		return boolStr(c.CombineTextSections), nil
	case "arm.archVersion":
		return string(c.ArmArchVersion), nil
	case "arm.unifiedSyntax":
		return boolStr(c.ArmUnifiedSyntax), nil
	case "arm.avRegisters":
		return boolStr(c.ArmAvRegisters), nil
	case "arm.r9Usage":
		return string(c.ArmR9Usage), nil
	case "arm.slUsage":
		return boolStr(c.ArmSlUsage), nil
	case "arm.fpUsage":
		return boolStr(c.ArmFpUsage), nil
	case "arm.ipUsage":
		return boolStr(c.ArmIpUsage), nil
	case "mips.abi":
		return string(c.MipsAbi), nil
	case "mips.instrCategory":
		return string(c.MipsInstrCategory), nil
	case "mips.registerPrefix":
		return boolStr(c.MipsRegisterPrefix), nil
	case "ppc.calculatePoolRelocations":
		return boolStr(c.PpcCalculatePoolRelocations), nil
	case "x86.formatter":
		return string(c.X86Formatter), nil
	default:
		return "", &InvalidConfigError{ID: id, Reason: "unhandled property"}
	}
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// schemaDoc mirrors Config's shape purely so jsonschema.Reflect has typed
// fields with names matching the property ids to reflect over; external
// tooling (a GUI settings panel) uses this to render a form.
type schemaDoc struct {
	FunctionRelocDiffs  string `json:"functionRelocDiffs" jsonschema:"enum=none,enum=name_address,enum=data_value,enum=all,default=name_address"`
	AnalyzeDataFlow     bool   `json:"analyzeDataFlow" jsonschema:"default=false"`
	ShowDataFlow        bool   `json:"showDataFlow" jsonschema:"default=true"`
	SpaceBetweenArgs    bool   `json:"spaceBetweenArgs" jsonschema:"default=true"`
	CombineDataSections bool   `json:"combineDataSections" jsonschema:"default=false"`
	CombineTextSections bool   `json:"combineTextSections" jsonschema:"default=false"`
	ArmArchVersion      string `json:"arm.archVersion" jsonschema:"enum=auto,enum=v4t,enum=v5te,enum=v6k,default=auto"`
	ArmUnifiedSyntax    bool   `json:"arm.unifiedSyntax" jsonschema:"default=false"`
	ArmAvRegisters      bool   `json:"arm.avRegisters" jsonschema:"default=false"`
	ArmR9Usage          string `json:"arm.r9Usage" jsonschema:"enum=generalPurpose,enum=sb,enum=tr,default=generalPurpose"`
	ArmSlUsage          bool   `json:"arm.slUsage" jsonschema:"default=false"`
	ArmFpUsage          bool   `json:"arm.fpUsage" jsonschema:"default=false"`
	ArmIpUsage          bool   `json:"arm.ipUsage" jsonschema:"default=false"`
	MipsAbi             string `json:"mips.abi" jsonschema:"enum=auto,enum=o32,enum=n32,enum=n64,default=auto"`
	MipsInstrCategory   string `json:"mips.instrCategory" jsonschema:"enum=auto,enum=cpu,enum=rsp,enum=r3000gte,enum=r4000allegrex,enum=r5900,default=auto"`
	MipsRegisterPrefix  bool   `json:"mips.registerPrefix" jsonschema:"default=false"`
	PpcCalculatePoolRelocations bool `json:"ppc.calculatePoolRelocations" jsonschema:"default=true"`
	X86Formatter        string `json:"x86.formatter" jsonschema:"enum=intel,enum=gas,enum=nasm,enum=masm,default=intel"`
}

// Schema returns the JSON Schema description of the property bag, generated
// the way other tooling in this codebase generates schemas for
// externally-consumed structures.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	return r.Reflect(&schemaDoc{})
}

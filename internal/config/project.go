package config

// ProjectConfig mirrors the shape of the project configuration file
// described in spec §6. The core never reads this file itself — the build
// driver (an external collaborator, spec §1) loads it and hands the core
// resolved (target_bytes, base_bytes, metadata) triples — but the shape is
// modeled here so callers within this module (report generation, the CLI
// demo) share one definition of a "unit".
type ProjectConfig struct {
	CustomMake     string          `json:"custom_make,omitempty"`
	CustomArgs     []string        `json:"custom_args,omitempty"`
	BuildTarget    bool            `json:"build_target,omitempty"`
	BuildBase      bool            `json:"build_base,omitempty"`
	WatchPatterns  []string        `json:"watch_patterns,omitempty"`
	IgnorePatterns []string        `json:"ignore_patterns,omitempty"`
	Units          []ProjectUnit   `json:"units"`
}

// ProjectUnit is one translation unit entry (§6 units[]).
type ProjectUnit struct {
	Name       string         `json:"name"`
	TargetPath string         `json:"target_path"`
	BasePath   string         `json:"base_path"`
	Metadata   ProjectUnitMeta `json:"metadata,omitempty"`
}

// ProjectUnitMeta is a unit's metadata block (§6 units[].metadata).
type ProjectUnitMeta struct {
	AutoGenerated      bool     `json:"auto_generated,omitempty"`
	Complete           bool     `json:"complete,omitempty"`
	ModuleName         string   `json:"module_name,omitempty"`
	ModuleID           string   `json:"module_id,omitempty"`
	SourcePath         string   `json:"source_path,omitempty"`
	ProgressCategories []string `json:"progress_categories,omitempty"`
}

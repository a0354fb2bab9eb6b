package main

import "runtime/debug"

// version can be set with -ldflags "-X main.version=v1.2.3".
var version string

func init() {
	if version == "" {
		version = buildVersion()
	}
}

// buildVersion prefers the module version, then the VCS revision.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	revision := settings["vcs.revision"]
	if revision == "" {
		return "dev"
	}
	revision = revision[:min(len(revision), 7)]
	if settings["vcs.modified"] == "true" {
		revision += "-dirty"
	}
	return revision
}

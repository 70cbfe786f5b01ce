package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// errUnknownPreset is returned when no preset matches the requested name.
var errUnknownPreset = errors.New("unknown preset")

// sohArtifacts are the fixed workflow artifact names of the Shipwright builds.
func sohArtifacts() map[platform.OSKey]string {
	return map[platform.OSKey]string{
		platform.Windows: "soh-windows.zip",
		platform.Linux:   "soh-linux.zip",
		platform.Mac:     "soh-mac.zip",
	}
}

// presets returns ready-made configurations for the ports this tool grew up
// around. Each mirrors one of the original per-game update setups.
func presets() map[string]*Config {
	return map[string]*Config{
		"soh-nightly": {
			Source:        SourceNightly,
			Repo:          "HarbourMasters/Shipwright",
			Branch:        "develop",
			Workflow:      "generate-builds",
			ArtifactFiles: sohArtifacts(),
			Executables:   []string{"soh.exe", "soh.elf"},
		},
		"soh-pr": {
			Source:        SourcePullRequest,
			Repo:          "TheLynk/Shipwright",
			PRNumber:      11,
			ArtifactFiles: sohArtifacts(),
			Executables:   []string{"soh.exe", "soh.elf"},
		},
		"2ship": {
			Source: SourceRelease,
			Repo:   "HarbourMasters/2ship2harkinian",
			// 2ship assets end with -<word>.zip, matched case-insensitively.
			MatchMode: MatchSuffix,
			MatchWords: map[platform.OSKey]string{
				platform.Windows: "Win64",
				platform.Linux:   "Linux",
				platform.Mac:     "Mac",
			},
		},
		"spaghetti": {
			Source: SourceRelease,
			Repo:   "HarbourMasters/SpaghettiKart",
			// SpaghettiKart publishes no macOS build, so mac is absent.
			MatchMode: MatchSubstring,
			MatchWords: map[platform.OSKey]string{
				platform.Windows: "windows",
				platform.Linux:   "linux-old",
			},
		},
		"spaghetti-nightly": {
			Source:   SourceNightly,
			Repo:     "HarbourMasters/SpaghettiKart",
			Branch:   "main",
			Workflow: "main",
			ArtifactFiles: map[platform.OSKey]string{
				platform.Windows: "spaghetti-windows.zip",
				platform.Linux:   "spaghetti-linux-x64.zip",
				platform.Mac:     "spaghetti-mac-intel-x64.zip",
			},
		},
	}
}

// PresetNames lists the available preset names in stable order.
func PresetNames() []string {
	all := presets()

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Preset returns a validated copy of the named preset configuration.
func Preset(name string) (*Config, error) {
	cfg, ok := presets()[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, errUnknownPreset)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

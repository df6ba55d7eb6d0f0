package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// robotToml is the subset of robot.toml this client reads.
type robotToml struct {
	Profiles map[string]profileEntry `toml:"profiles"`
}

type profileEntry struct {
	Description string `toml:"description"`
	Hidden      bool   `toml:"hidden"`
}

// Profile is a named configuration preset declared in robot.toml.
type Profile struct {
	Name        string
	Description string
}

// Profiles returns the selectable profiles declared in the folder's
// robot.toml, sorted by name. A missing or unparsable file yields none;
// profiles marked hidden are skipped.
func Profiles(folder string) []Profile {
	data, err := os.ReadFile(filepath.Join(folder, RobotTomlFile))
	if err != nil {
		return nil
	}

	var doc robotToml
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	out := make([]Profile, 0, len(doc.Profiles))
	for name, entry := range doc.Profiles {
		if entry.Hidden {
			continue
		}
		out = append(out, Profile{Name: name, Description: entry.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

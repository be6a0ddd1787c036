// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package doc

import (
	"embed"

	"gopkg.in/yaml.v3"
)

// FS embeds the OpenAPI document of the REST interface.
//
//go:embed drawpool.yaml
var FS embed.FS

var info struct {
	Info struct {
		Title   string
		Version string
	}
	Paths map[string]yaml.Node
}

// Version open api version
func Version() string {
	return info.Info.Version
}

// Paths lists the documented endpoints.
func Paths() []string {
	paths := make([]string, 0, len(info.Paths))
	for p := range info.Paths {
		paths = append(paths, p)
	}
	return paths
}

func init() {
	content, err := FS.ReadFile("drawpool.yaml")
	if err != nil {
		panic(err)
	}
	if err := yaml.Unmarshal(content, &info); err != nil {
		panic(err)
	}
}

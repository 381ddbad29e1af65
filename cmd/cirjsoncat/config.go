// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"os"

	"sigs.k8s.io/yaml"

	"github.com/cirjson-go/cirjson"
)

// config is cirjsoncat's on-disk settings file, loaded with
// sigs.k8s.io/yaml so either YAML or plain JSON works.
type config struct {
	Pretty               bool  `json:"pretty"`
	StrictDuplicates     *bool `json:"strictDuplicates"`
	MaxNestingDepth      int   `json:"maxNestingDepth"`
	CanonicalizeNames    *bool `json:"canonicalizePropertyNames"`
	FailOnSymbolOverflow bool  `json:"failOnSymbolHashOverflow"`
}

func loadConfig(path string) (config, error) {
	cfg := config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// builder turns cfg into a *cirjson.Builder seeded with library
// defaults, only overriding what the config file actually sets.
func (cfg config) builder() *cirjson.Builder {
	b := cirjson.NewBuilder()
	if cfg.StrictDuplicates != nil {
		b.Configure(cirjson.ParserFeatureStrictDuplicateDetection, *cfg.StrictDuplicates)
	}
	if cfg.CanonicalizeNames != nil {
		b.EnableFactory(cirjson.FactoryFeatureCanonicalizePropertyNames)
		if !*cfg.CanonicalizeNames {
			b.DisableFactory(cirjson.FactoryFeatureCanonicalizePropertyNames)
		}
	}
	if cfg.FailOnSymbolOverflow {
		b.EnableFactory(cirjson.FactoryFeatureFailOnSymbolHashOverflow)
	}
	if cfg.MaxNestingDepth > 0 {
		b.StreamReadConstraints(cirjson.StreamReadConstraints{MaxNestingDepth: cfg.MaxNestingDepth})
		b.StreamWriteConstraints(cirjson.StreamWriteConstraints{MaxNestingDepth: cfg.MaxNestingDepth})
	}
	return b
}

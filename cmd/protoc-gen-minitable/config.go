// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig is the --config TOML file's shape: generator defaults that
// apply when the protoc parameter string leaves a setting unspecified.
type fileConfig struct {
	FastTableDefault bool   `toml:"fasttable_default"`
	OutputPathTmpl   string `toml:"output_path_template"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		OutputPathTmpl: "{dir}/{base}.minitable",
	}
}

// loadConfig overlays path's settings onto the compiled-in defaults,
// using meta.IsDefined so a key absent from the file never clobbers a
// default with TOML's zero value.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fileConfig{}, fmt.Errorf("load generator config: %w", err)
	}
	if meta.IsDefined("fasttable_default") {
		cfg.FastTableDefault = raw.FastTableDefault
	}
	if meta.IsDefined("output_path_template") {
		cfg.OutputPathTmpl = strings.TrimSpace(raw.OutputPathTmpl)
	}
	return cfg, nil
}

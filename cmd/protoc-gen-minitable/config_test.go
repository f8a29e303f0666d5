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
	"os"
	"path/filepath"
	"testing"

	"go.protoreg.dev/protoreg/internal/testutil"
)

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	return path
}

func TestLoadConfigNoPathReturnsDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, defaultConfig(), cfg)
}

func TestLoadConfigOverlaysOnlyDefinedKeys(t *testing.T) {
	path := writeTOML(t, `fasttable_default = true`+"\n")
	cfg, err := loadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, cfg.FastTableDefault)
	testutil.ExpectEq(t, defaultConfig().OutputPathTmpl, cfg.OutputPathTmpl)
}

func TestLoadConfigTrimsOutputPathTemplate(t *testing.T) {
	path := writeTOML(t, `output_path_template = "  {dir}/{base}.mt  "`+"\n")
	cfg, err := loadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "{dir}/{base}.mt", cfg.OutputPathTmpl)
}

func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	path := writeTOML(t, `not = [valid`+"\n")
	_, err := loadConfig(path)
	testutil.AssertError(t, err)
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	testutil.AssertError(t, err)
}

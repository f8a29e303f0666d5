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
)

// genParams is the result of parsing the protoc-gen-* plugin parameter
// string (§6: "a comma-separated list of key[=value] tokens").
type genParams struct {
	FastTable bool
}

// parseParams recognizes the sole key "fasttable"; any other key fails
// the generator with a diagnostic, matching §6's "unknown keys fail the
// generator".
func parseParams(raw string) (genParams, error) {
	var p genParams
	if raw == "" {
		return p, nil
	}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key := tok
		if idx := strings.IndexByte(tok, '='); idx >= 0 {
			key = tok[:idx]
		}
		switch key {
		case "fasttable":
			p.FastTable = true
		default:
			return genParams{}, fmt.Errorf("unrecognized generator parameter %q", key)
		}
	}
	return p, nil
}

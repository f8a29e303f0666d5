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

package protoreg

import "strings"

// resolveSymbol {{{

// resolveSymbol applies descriptor.proto's scoped lookup rule (§4.4 step
// 2): a leading-dot name is absolute; otherwise the name is tried against
// scope, then each of scope's ancestor scopes in turn, then the empty
// (file) scope, and the first match wins. Nested declarations shadow
// same-named ancestors because the search starts at the innermost scope.
func resolveSymbol(scope, name string, lookup func(string) (Def, bool)) (Def, bool) {
	if strings.HasPrefix(name, ".") {
		return lookup(name[1:])
	}

	for _, candidate := range candidateNames(scope, name) {
		if def, ok := lookup(candidate); ok {
			return def, true
		}
	}
	return nil, false
}

// candidateNames enumerates scope+"."+name, then the same joined to each
// ancestor of scope, then the bare name, innermost first.
func candidateNames(scope, name string) []string {
	var out []string
	for {
		if scope == "" {
			out = append(out, name)
			return out
		}
		out = append(out, scope+"."+name)
		if idx := strings.LastIndexByte(scope, '.'); idx >= 0 {
			scope = scope[:idx]
		} else {
			scope = ""
		}
	}
}

// }}}

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

import (
	"testing"

	"go.protoreg.dev/protoreg/internal/testutil"
)

func TestCandidateNamesInnermostFirst(t *testing.T) {
	got := candidateNames("a.b.c", "Target")
	want := []string{"a.b.c.Target", "a.b.Target", "a.Target", "Target"}
	testutil.ExpectSliceEq(t, want, got)
}

func TestCandidateNamesEmptyScope(t *testing.T) {
	got := candidateNames("", "Target")
	testutil.ExpectSliceEq(t, []string{"Target"}, got)
}

func TestResolveSymbolAbsoluteNameSkipsScope(t *testing.T) {
	lookup := func(name string) (Def, bool) {
		if name == "pkg.Target" {
			m := NewMessage()
			_ = m.SetFullName("pkg.Target")
			return m, true
		}
		return nil, false
	}
	def, ok := resolveSymbol("pkg.Other", ".pkg.Target", lookup)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "pkg.Target", def.FullName())
}

// TestResolveSymbolNearestScopeWins exercises descriptor.proto's "a nested
// declaration shadows a same-named ancestor" rule: two defs with the same
// short name exist at different scope depths, and the lookup from the
// inner scope must prefer the inner one.
func TestResolveSymbolNearestScopeWins(t *testing.T) {
	outer := NewMessage()
	testutil.AssertNoError(t, outer.SetFullName("pkg.Target"))
	inner := NewMessage()
	testutil.AssertNoError(t, inner.SetFullName("pkg.Outer.Target"))

	table := map[string]Def{
		"pkg.Target":       outer,
		"pkg.Outer.Target": inner,
	}
	lookup := func(name string) (Def, bool) {
		d, ok := table[name]
		return d, ok
	}

	def, ok := resolveSymbol("pkg.Outer.Inner", "Target", lookup)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "pkg.Outer.Target", def.FullName())
}

func TestResolveSymbolFallsBackToFileScope(t *testing.T) {
	fileLevel := NewMessage()
	testutil.AssertNoError(t, fileLevel.SetFullName("Target"))

	lookup := func(name string) (Def, bool) {
		if name == "Target" {
			return fileLevel, true
		}
		return nil, false
	}
	def, ok := resolveSymbol("pkg.Outer.Inner", "Target", lookup)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "Target", def.FullName())
}

func TestResolveSymbolNotFound(t *testing.T) {
	lookup := func(string) (Def, bool) { return nil, false }
	_, ok := resolveSymbol("pkg.Outer", "Missing", lookup)
	testutil.ExpectFalse(t, ok)
}

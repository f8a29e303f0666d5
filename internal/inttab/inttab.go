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

// Package inttab provides a small lookup table used by the def graph: a
// direct-indexed slice for small field numbers, falling back to a Go map
// for sparse or large ones.
package inttab

// Table maps uint32 keys (wire field numbers) to values of type V. Keys
// below directLimit are stored in a dense slice; everything else goes
// through the fallback map. Most messages have field numbers clustered
// near 1..N, so the dense path covers the common case without ever
// touching the map.
type Table[V any] struct {
	dense    []entry[V]
	fallback map[uint32]V
}

type entry[V any] struct {
	set   bool
	value V
}

const directLimit = 64

// New returns an empty table.
func New[V any]() *Table[V] {
	return &Table[V]{}
}

// Get returns the value stored for key, and whether it was present.
func (t *Table[V]) Get(key uint32) (V, bool) {
	if int(key) < len(t.dense) {
		e := t.dense[key]
		return e.value, e.set
	}
	if t.fallback != nil {
		v, ok := t.fallback[key]
		return v, ok
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (t *Table[V]) Has(key uint32) bool {
	_, ok := t.Get(key)
	return ok
}

// Put stores value under key, growing the dense region when key is small
// enough to be worth the array growth, or falling back to the map
// otherwise.
func (t *Table[V]) Put(key uint32, value V) {
	if key < directLimit {
		if int(key) >= len(t.dense) {
			grown := make([]entry[V], key+1)
			copy(grown, t.dense)
			t.dense = grown
		}
		t.dense[key] = entry[V]{set: true, value: value}
		return
	}
	if t.fallback == nil {
		t.fallback = make(map[uint32]V)
	}
	t.fallback[key] = value
}

// Len returns the number of stored entries.
func (t *Table[V]) Len() int {
	n := 0
	for _, e := range t.dense {
		if e.set {
			n++
		}
	}
	return n + len(t.fallback)
}

// Keys returns all stored keys in ascending order. No package in this
// module calls it; the def graph's lookups go through Get/Has.
func (t *Table[V]) Keys() []uint32 {
	keys := make([]uint32, 0, t.Len())
	for i, e := range t.dense {
		if e.set {
			keys = append(keys, uint32(i))
		}
	}
	if len(t.fallback) > 0 {
		extra := make([]uint32, 0, len(t.fallback))
		for k := range t.fallback {
			extra = append(extra, k)
		}
		sortUint32(extra)
		keys = append(keys, extra...)
	}
	return keys
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

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

import "sync/atomic"

// refCount is an atomic reference count. Before a def is installed into a
// Table it has exactly one owner (the caller building it) and refCount is
// not touched; once installed, Ref/Unref become safe to call from any
// goroutine per §5.
type refCount struct {
	n atomic.Int32
}

// ref increments the count. It is only meaningful after installation.
func (r *refCount) ref() {
	r.n.Add(1)
}

// unref decrements the count and reports whether it reached zero.
func (r *refCount) unref() bool {
	return r.n.Add(-1) == 0
}

// load returns the current count, starting at zero for a freshly built
// mutable def and set to one the moment it is installed by Table.Commit.
func (r *refCount) load() int32 {
	return r.n.Load()
}

func (r *refCount) set(v int32) {
	r.n.Store(v)
}

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

// Def {{{

// Def is the tagged-variant base every def kind satisfies: Message, Enum,
// Service, Extension, or Unresolved. A def is mutable iff its table back-reference is
// absent; once Table.Commit installs it, all mutation operations are
// rejected (see defHeader.checkMutable).
type Def interface {
	Kind() Kind
	FullName() string
	IsMutable() bool

	// Ref/Unref are safe to call concurrently only once the def has been
	// installed into a Table. Unref reports whether the count reached
	// zero, meaning the caller just dropped the last reference.
	Ref()
	Unref() bool

	table() *Table
	install(tbl *Table)
	setFullName(name string)

	// refs reports the live reference count. Zero means the def is safe
	// to drop from the retirement list; meaningless on a def that was
	// never installed.
	refs() int32
}

// defHeader is embedded by every concrete def kind and implements the
// common parts of Def.
type defHeader struct {
	kind    Kind
	fqName  string
	tbl     *Table
	rc      refCount
}

func (h *defHeader) Kind() Kind        { return h.kind }
func (h *defHeader) FullName() string  { return h.fqName }
func (h *defHeader) IsMutable() bool   { return h.tbl == nil }
func (h *defHeader) table() *Table     { return h.tbl }

func (h *defHeader) setFullName(name string) {
	h.fqName = name
}

// SetFullName assigns the def's fully-qualified name. Permitted only while
// the def is mutable; fromdescriptor calls it once per def, immediately
// after construction.
func (h *defHeader) SetFullName(name string) error {
	if err := h.checkMutable(); err != nil {
		return err
	}
	h.fqName = name
	return nil
}

func (h *defHeader) install(tbl *Table) {
	h.tbl = tbl
	h.rc.set(1)
}

func (h *defHeader) Ref() {
	if h.tbl != nil {
		h.rc.ref()
	}
}

func (h *defHeader) Unref() bool {
	if h.tbl == nil {
		return false
	}
	return h.rc.unref()
}

func (h *defHeader) refs() int32 {
	return h.rc.load()
}

// checkMutable reports whether the def may still be mutated. Per the base
// spec's open question, the release behavior here is the stricter of the
// two choices it offers: mutating an installed def returns an error
// instead of silently doing nothing, so callers can't misread a dropped
// write as having taken effect.
func (h *defHeader) checkMutable() error {
	if h.tbl != nil {
		return errDefInstalled(h.fqName)
	}
	return nil
}

// }}}

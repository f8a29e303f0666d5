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

import "iter"

// Transaction {{{

// Transaction is a name->mutable-def map (§3, §4.3). It is single-owner:
// concurrent use of the same Transaction from multiple goroutines is
// undefined, same as the base spec requires.
type Transaction struct {
	byName map[string]Def
	order  []string
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{byName: make(map[string]Def)}
}

// Add fails on a duplicate name or an unnamed def, and otherwise stores
// def under its FullName().
func (tx *Transaction) Add(def Def) error {
	name := def.FullName()
	if name == "" {
		return errUnnamedDef()
	}
	if _, exists := tx.byName[name]; exists {
		return errDuplicateDeclName(name)
	}
	tx.byName[name] = def
	tx.order = append(tx.order, name)
	return nil
}

// Get borrows the def registered under name, without transferring
// ownership.
func (tx *Transaction) Get(name string) (Def, bool) {
	d, ok := tx.byName[name]
	return d, ok
}

// Len returns the number of defs staged in the transaction.
func (tx *Transaction) Len() int {
	return len(tx.order)
}

// All iterates the transaction's defs in insertion order.
func (tx *Transaction) All() iter.Seq[Def] {
	return func(yield func(Def) bool) {
		for _, name := range tx.order {
			if !yield(tx.byName[name]) {
				return
			}
		}
	}
}

// }}}

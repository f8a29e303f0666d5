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

import "sync"

// Table {{{

// Table is the installed symbol table: a name-indexed, reference-counted
// snapshot of every Message/Enum/Service def committed so far, safe for
// concurrent readers while a writer prepares the next Commit (§5).
type Table struct {
	mu      sync.RWMutex
	live    map[string]Def
	retired []Def
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{live: make(map[string]Def)}
}

// CommitStatus reports the outcome of a Commit call. A commit with any
// Errors entry installs nothing: either every def in the transaction
// resolves and installs, or none does (§4.4, "atomic install").
type CommitStatus struct {
	Errors []*Error
}

// OK reports whether the commit fully succeeded.
func (s *CommitStatus) OK() bool {
	return len(s.Errors) == 0
}

// Commit resolves every field's pending type-name reference against the
// union of the table's current contents and tx's new defs, using
// descriptor.proto scoping rules (§4.4 step 2), then atomically installs
// the whole transaction or installs nothing. Defs in tx that replace an
// already-installed name move the old def to the retirement list rather
// than dropping it outright, so concurrent readers holding a reference to
// the old def are unaffected until GC reclaims it.
func (t *Table) Commit(tx *Transaction) *CommitStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[string]Def, len(t.live)+tx.Len())
	for name, def := range t.live {
		snapshot[name] = def
	}
	for def := range tx.All() {
		snapshot[def.FullName()] = def
	}
	lookup := func(name string) (Def, bool) {
		d, ok := snapshot[name]
		return d, ok
	}

	status := &CommitStatus{}
	for def := range tx.All() {
		switch d := def.(type) {
		case *MessageDef:
			for _, f := range d.fields {
				resolveFieldTarget(status, lookup, d.fqName, f)
			}
		case *ExtensionDef:
			resolveExtension(status, lookup, d)
		}
	}
	if !status.OK() {
		return status
	}

	for def := range tx.All() {
		if old, exists := t.live[def.FullName()]; exists {
			t.retired = append(t.retired, old)
		}
	}
	newLive := make(map[string]Def, len(snapshot))
	for name, def := range t.live {
		newLive[name] = def
	}
	for def := range tx.All() {
		def.install(t)
		newLive[def.FullName()] = def
	}
	t.live = newLive
	return status
}

// GetDefs returns a ref-counted snapshot of every installed def whose
// kind is in kinds, or of every installed def when kinds is empty.
// Callers must Unref each returned def when done with it.
func (t *Table) GetDefs(kinds ...Kind) []Def {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Def
	for _, def := range t.live {
		if len(kinds) > 0 && !kindIn(def.Kind(), kinds) {
			continue
		}
		def.Ref()
		out = append(out, def)
	}
	return out
}

// GC drops retired defs whose reference count has reached zero. It takes
// the writer lock, matching Commit, since it mutates the retirement list.
func (t *Table) GC() {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.retired[:0:0]
	for _, def := range t.retired {
		if def.refs() > 0 {
			kept = append(kept, def)
		}
	}
	t.retired = kept
}

// resolveFieldTarget resolves f's pending sub-message/enum type name, if
// any, scoped to scope (§4.4 step 2), and records any diagnostic onto
// status rather than returning early — a later field in the same
// transaction may still be independently resolvable.
func resolveFieldTarget(status *CommitStatus, lookup func(string) (Def, bool), scope string, f *FieldDef) {
	if f.target != nil || f.targetName == "" {
		return
	}
	target, found := resolveSymbol(scope, f.targetName, lookup)
	if !found {
		status.Errors = append(status.Errors, errUnresolvedSymbol(scope, f.targetName))
		return
	}
	wantKind := KindMessage
	if f.type_ == TypeEnum {
		wantKind = KindEnum
	}
	if target.Kind() != wantKind {
		status.Errors = append(status.Errors, errKindMismatch(f.targetName, wantKind, target.Kind()))
		return
	}
	f.resolveTarget(target)
}

// resolveExtension resolves an extension's two independent name links: its
// extendee and, for message/group/enum extensions, its own field target,
// both scoped from wherever the extension itself was declared (the same
// nearest-scope-wins rule §4.4 step 2 applies to an ordinary field). It
// then checks the extension's field number falls inside the extendee's
// declared extension range (§4.7).
func resolveExtension(status *CommitStatus, lookup func(string) (Def, bool), x *ExtensionDef) {
	scope := parentScope(x.fqName)

	if x.extendee == nil {
		target, found := resolveSymbol(scope, x.extendeeName, lookup)
		if !found {
			status.Errors = append(status.Errors, errUnresolvedSymbol(x.fqName, x.extendeeName))
			return
		}
		msg, ok := target.(*MessageDef)
		if !ok {
			status.Errors = append(status.Errors, errKindMismatch(x.extendeeName, KindMessage, target.Kind()))
			return
		}
		x.resolveExtendee(msg)
	}

	resolveFieldTarget(status, lookup, scope, x.field)

	num := x.field.Number()
	if num < x.extendee.extensionStart || num >= x.extendee.extensionEnd {
		status.Errors = append(status.Errors, errExtensionNumberOutOfRange(x.fqName, num))
	}
}

// parentScope strips the last dot-separated component of a fully-qualified
// name, giving the scope it was declared in.
func parentScope(fqName string) string {
	idx := lastDot(fqName)
	if idx < 0 {
		return ""
	}
	return fqName[:idx]
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// }}}

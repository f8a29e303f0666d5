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

// UnresolvedDef {{{

// UnresolvedDef is the Unresolved Def variant: a standalone placeholder
// that carries only a target name. Nothing in this package creates one:
// MessageDef.Dup demotes a field's sub-link to a pending type name on the
// FieldDef itself (see FieldDef.TargetName), and Table.Commit resolves
// those pending names. Table.Commit does not resolve or reject an
// UnresolvedDef that is added to a transaction directly.
type UnresolvedDef struct {
	defHeader
	targetName string
}

var _ Def = (*UnresolvedDef)(nil)

func NewUnresolved(targetName string) *UnresolvedDef {
	return &UnresolvedDef{
		defHeader:  defHeader{kind: KindUnresolved},
		targetName: targetName,
	}
}

func (u *UnresolvedDef) TargetName() string {
	return u.targetName
}

// }}}

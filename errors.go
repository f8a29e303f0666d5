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

import "fmt"

// Error is the single diagnostic type returned across the def graph and
// symbol table. Every error carries a stable numeric code so callers can
// switch on Code() without string matching. Most errors also carry the
// fully-qualified name of whatever def or symbol triggered it; the
// unnamed-def, unset-field, field-after-add and invalid-field-number
// errors carry no name, and Error() then omits it.
type Error struct {
	code    uint32
	message string
	name    string
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.name == "" {
		return fmt.Sprintf("E%d: %s", e.code, e.message)
	}
	return fmt.Sprintf("E%d: %s: %s", e.code, e.name, e.message)
}

func (e *Error) Code() uint32 {
	return e.code
}

func (e *Error) Name() string {
	return e.name
}

const (
	codeDefInstalled              uint32 = 1000
	codeUnnamedDef                uint32 = 1001
	codeFieldUnset                uint32 = 1010
	codeFieldNumberTaken          uint32 = 1011
	codeFieldNameTaken            uint32 = 1012
	codeFieldAfterAdd             uint32 = 1013
	codeFieldNumberInvalid        uint32 = 1014
	codeEnumNameTaken             uint32 = 1020
	codeEnumNumberTaken           uint32 = 1021
	codeHasbitOverflow            uint32 = 1030
	codeExtensionRangeInvalid     uint32 = 1031
	codeUnresolvedSymbol          uint32 = 1040
	codeKindMismatch              uint32 = 1041
	codeDuplicateDeclName         uint32 = 1042
	codeExtensionNumberOutOfRange uint32 = 1050
)

func errDefInstalled(name string) *Error {
	return &Error{code: codeDefInstalled, name: name, message: "def is installed and no longer mutable"}
}

func errUnnamedDef() *Error {
	return &Error{code: codeUnnamedDef, message: "def has no name"}
}

func errFieldUnset(what string) *Error {
	return &Error{code: codeFieldUnset, message: "field has no " + what}
}

func errFieldNumberTaken(msg string, number uint32) *Error {
	return &Error{code: codeFieldNumberTaken, name: msg, message: fmt.Sprintf("field number %d already exists", number)}
}

func errFieldNameTaken(msg, fieldName string) *Error {
	return &Error{code: codeFieldNameTaken, name: msg, message: fmt.Sprintf("field name %q already exists", fieldName)}
}

func errFieldAfterAdd() *Error {
	return &Error{code: codeFieldAfterAdd, message: "cannot set number/name after the field has been added to a message"}
}

func errFieldNumberInvalid(number int32) *Error {
	return &Error{code: codeFieldNumberInvalid, message: fmt.Sprintf("field number %d is not positive", number)}
}

func errEnumNameTaken(enum, name string) *Error {
	return &Error{code: codeEnumNameTaken, name: enum, message: fmt.Sprintf("enum value name %q already exists", name)}
}

func errEnumNumberTaken(enum string, number uint64) *Error {
	return &Error{code: codeEnumNumberTaken, name: enum, message: fmt.Sprintf("enum value number %d already exists", number)}
}

func errHasbitOverflow(msg string) *Error {
	return &Error{code: codeHasbitOverflow, name: msg, message: "has-bit count exceeds the layout planner's limit"}
}

func errExtensionRangeInvalid(msg string) *Error {
	return &Error{code: codeExtensionRangeInvalid, name: msg, message: "extension range end is not after start"}
}

func errUnresolvedSymbol(base, symbol string) *Error {
	return &Error{code: codeUnresolvedSymbol, name: symbol, message: fmt.Sprintf("could not resolve %q from scope %q", symbol, base)}
}

func errKindMismatch(name string, want, got Kind) *Error {
	return &Error{code: codeKindMismatch, name: name, message: fmt.Sprintf("expected %s, found %s", want, got)}
}

func errDuplicateDeclName(name string) *Error {
	return &Error{code: codeDuplicateDeclName, name: name, message: "duplicate name in transaction"}
}

func errExtensionNumberOutOfRange(name string, number int32) *Error {
	return &Error{code: codeExtensionNumberOutOfRange, name: name, message: fmt.Sprintf("field number %d is outside the extendee's declared extension range", number)}
}

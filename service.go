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

// ServiceDef {{{

// ServiceDef is a Def of kind Service. RPC execution is out of scope
// (§1 Non-goals); ServiceDef exists only so the symbol table can install
// and kind-check service names the way descriptor.proto expects, e.g. so
// a field that is mistakenly typed against a service name resolves to
// the right kind-mismatch diagnostic instead of "not found".
type ServiceDef struct {
	defHeader

	methodNames []string
}

var _ Def = (*ServiceDef)(nil)

// NewService returns a fresh, mutable, unnamed ServiceDef.
func NewService() *ServiceDef {
	return &ServiceDef{defHeader: defHeader{kind: KindService}}
}

// AddMethodName records a method name for diagnostic purposes only; no
// request/response linkage is modeled.
func (s *ServiceDef) AddMethodName(name string) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.methodNames = append(s.methodNames, name)
	return nil
}

func (s *ServiceDef) MethodNames() []string {
	return s.methodNames
}

// }}}

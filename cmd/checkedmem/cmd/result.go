/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"unsafe"

	"github.com/blacktop/go-checkedmem"
)

// CopyResult is the outcome of one checked copy.
type CopyResult struct {
	Source string `json:"source" yaml:"source"`
	Len    uint64 `json:"len" yaml:"len"`
	OK     bool   `json:"ok" yaml:"ok"`
	Fault  *Fault `json:"fault,omitempty" yaml:"fault,omitempty"`
	Data   string `json:"data,omitempty" yaml:"data,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Fault describes where a checked copy stopped.
type Fault struct {
	Addr   string `json:"addr" yaml:"addr"`
	Offset uint64 `json:"offset" yaml:"offset"`
	Kind   string `json:"kind" yaml:"kind"`
	Access string `json:"access" yaml:"access"`
	Signal string `json:"signal" yaml:"signal"`
}

// checkedCopy copies n bytes from src into a fresh buffer and returns the
// buffer along with the result. On a fault the buffer holds the bytes that
// arrived before the faulting address.
func checkedCopy(src unsafe.Pointer, n uintptr) ([]byte, CopyResult) {
	buf := make([]byte, n)
	res := CopyResult{Source: hexAddr(uintptr(src)), Len: uint64(n)}

	err := checkedmem.CopyFrom(buf, src)
	if err == nil {
		res.OK = true
		return buf, res
	}

	var fe *checkedmem.FaultError
	if !errors.As(err, &fe) {
		res.Error = err.Error()
		return nil, res
	}
	rec := fe.Record
	res.Fault = &Fault{
		Addr:   hexAddr(rec.Addr),
		Kind:   rec.Kind.String(),
		Access: rec.Access.String(),
		Signal: rec.Kind.Signal().String(),
	}
	if rec.Access == checkedmem.AccessRead && rec.Addr >= uintptr(src) && rec.Addr-uintptr(src) <= n {
		res.Fault.Offset = uint64(rec.Addr - uintptr(src))
		return buf[:res.Fault.Offset], res
	}
	return nil, res
}

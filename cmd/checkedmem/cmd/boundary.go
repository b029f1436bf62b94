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
//go:build unix

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/blacktop/go-checkedmem/internal/pagemap"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var (
	boundaryValid uint64
	boundaryLen   uint64
	boundaryMode  string
)

func init() {
	rootCmd.AddCommand(boundaryCmd)
	boundaryCmd.Flags().Uint64Var(&boundaryValid, "valid", 32, "Accessible bytes before the invalid page")
	boundaryCmd.Flags().Uint64VarP(&boundaryLen, "len", "n", 64, "Bytes to copy")
	boundaryCmd.Flags().StringVarP(&boundaryMode, "mode", "m", "unmap", "How the second page is made invalid (unmap, protect)")
}

var boundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Copy across a page boundary into an invalid page",
	Long: `Map two pages, make the second one invalid, and copy --len bytes starting
--valid bytes before it. The copy stops at the first byte of the invalid page
and the fault is reported instead of crashing the process.`,
	Args: cobra.NoArgs,
	RunE: runBoundary,
}

func runBoundary(cmd *cobra.Command, args []string) error {
	page := uint64(pagemap.PageSize())
	if boundaryValid > page {
		return fmt.Errorf("--valid must not exceed the page size (%d bytes)", page)
	}
	if boundaryLen == 0 {
		return fmt.Errorf("--len must be greater than zero")
	}

	r, err := pagemap.Map(2)
	if err != nil {
		return err
	}
	defer r.Close()

	first := r.Bytes(0)
	for i := range first {
		first[i] = byte(i)
	}

	switch boundaryMode {
	case "unmap":
		err = r.Unmap(1)
	case "protect":
		err = r.Protect(1, unix.PROT_NONE)
	default:
		return fmt.Errorf("unknown mode %q (valid: unmap, protect)", boundaryMode)
	}
	if err != nil {
		return err
	}

	src := r.Boundary(1, uintptr(boundaryValid))
	logger.Debug("copying across boundary",
		"src", hexAddr(uintptr(src)),
		"valid", boundaryValid,
		"len", boundaryLen,
		"mode", boundaryMode)

	data, res := checkedCopy(src, uintptr(boundaryLen))
	res.Data = hex.EncodeToString(data)
	return printResult(res)
}

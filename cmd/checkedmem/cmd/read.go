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
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"unsafe"

	"github.com/spf13/cobra"
)

const maxReadLen = 1 << 20

var readDump bool

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVarP(&readDump, "dump", "d", false, "Print a hex dump instead of structured output")
}

var readCmd = &cobra.Command{
	Use:   "read ADDR LEN",
	Short: "Read raw memory of this process without crashing on invalid addresses",
	Long: `Read LEN bytes at ADDR in this process's address space. ADDR and LEN accept
Go integer syntax (0x prefix for hex). An invalid address is reported as a
fault with the first inaccessible byte.`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	addr, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	n, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", args[1], err)
	}
	if n == 0 || n > maxReadLen {
		return fmt.Errorf("length must be between 1 and %d", maxReadLen)
	}

	src := unsafe.Pointer(uintptr(addr))
	data, res := checkedCopy(src, uintptr(n))
	if readDump {
		if res.Fault != nil {
			fmt.Fprintf(os.Stderr, "fault at %s (%s, %s)\n", res.Fault.Addr, res.Fault.Signal, res.Fault.Kind)
		}
		if res.Error != "" {
			return fmt.Errorf("%s", res.Error)
		}
		fmt.Print(hex.Dump(data))
		return nil
	}
	res.Data = hex.EncodeToString(data)
	return printResult(res)
}

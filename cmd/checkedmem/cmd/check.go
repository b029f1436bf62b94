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
	"os"
	"runtime"

	"github.com/blacktop/go-checkedmem"
	"github.com/spf13/cobra"
)

// CheckResult describes what the current platform supports.
type CheckResult struct {
	Supported  bool   `json:"supported" yaml:"supported"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Platform   string `json:"platform" yaml:"platform"`
	PageSize   int    `json:"page_size" yaml:"page_size"`
	Installed  bool   `json:"installed" yaml:"installed"`
	Env        string `json:"env" yaml:"env"`
	Mover      string `json:"mover" yaml:"mover"`
	Production bool   `json:"production" yaml:"production"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check checked memory access support and effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := checkedmem.Supported()
		res := CheckResult{
			Supported:  ok,
			Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			PageSize:   os.Getpagesize(),
			Installed:  checkedmem.Installed(),
			Env:        config.Env,
			Mover:      config.Mover,
			Production: config.Production(),
			LogLevel:   config.LogLevel.String(),
		}
		if err != nil {
			res.Error = err.Error()
		}
		return printResult(res)
	},
}

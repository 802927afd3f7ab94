// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/steigerlint/steiger/cmd/steiger"

func main() {
	cmd.Execute()
}

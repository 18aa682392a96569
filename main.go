// SPDX-License-Identifier: MPL-2.0

package main

import cmd "shroud/cmd/shroud"

func main() {
	cmd.Execute()
}

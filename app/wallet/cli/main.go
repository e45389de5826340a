// Package main runs the escrow wallet.
package main

import "github.com/ardanlabs/escrow/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

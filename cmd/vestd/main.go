// Command vestd runs the token-vesting escrow daemon.
package main

import "github.com/strmfi/vestd/internal/cli"

func main() {
	cli.Execute()
}

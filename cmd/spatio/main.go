// Command spatio is the server's binary entrypoint; all logic lives in
// internal/cli.
package main

import "github.com/tonycui/spatio/internal/cli"

func main() {
	cli.Execute()
}

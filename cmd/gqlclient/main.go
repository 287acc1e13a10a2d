// Command gqlclient introspects GraphQL endpoints and builds, sends and
// subscribes to operations from the command line.
package main

import (
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

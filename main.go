// Idiomatic entrypoint for Cobra CLI that delegates handling to the Cobra root command in cmd/root.go
package main

import (
	"transitsim/cmd"
)

func main() {
	cmd.Execute()
}

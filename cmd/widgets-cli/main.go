package main

import (
	"homewidgets/cmd/widgets-cli/cmd"
)

func main() {
	cmd.Execute()
}

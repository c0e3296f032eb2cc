package main

import (
	"github.com/projectdesk/cmd"
)

func main() {
	cmd.Execute()
}

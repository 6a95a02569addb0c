package main

import (
	"github.com/bnonni/tool5/cmd"
)

func main() {
	cmd.Execute()
}

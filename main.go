package main

import "github.com/jtrac-dev/jtrac/cmd"

func main() {
	cmd.Execute()
}

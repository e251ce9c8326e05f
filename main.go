package main

import "github.com/khanhnv2901/talos-cli/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}

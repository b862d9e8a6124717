package main

import "github.com/chriserin/qmetry/cmd"

func main() {
	cmd.Execute()
}

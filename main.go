package main

import (
	"musicfy/cmd"
)

func main() {
	cmd.Execute()
}

package main

import "github.com/hakanisaksson/githook-seclog/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/FactomWyomingEntity/prosper-stake/cmd"

func main() {
	cmd.Execute()
}

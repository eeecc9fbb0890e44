package main

import "github.com/debtmap-go/debtmap/cmd"

func main() {
	cmd.Execute()
}

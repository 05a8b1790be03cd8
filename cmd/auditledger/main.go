package main

import "github.com/mosaicnetworks/auditledger/cmd/auditledger/commands"

func main() {
	commands.Execute()
}

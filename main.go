package main

import (
	_ "time/tzdata"

	"weread-sync/cmd"
)

func main() {
	cmd.Execute()
}

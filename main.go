package main

import (
	_ "time/tzdata"

	"nextlevel.com/nextlevel/cmd"
)

func main() {
	cmd.Execute()
}

package main

import "github.com/eproba/server/cmd"

func main() {
	cmd.Execute()
}

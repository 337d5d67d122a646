package main

import "github.com/shahpalash10/chore-Mate/cmd"

func main() {
	cmd.Execute()
}

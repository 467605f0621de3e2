package main

import "github.com/mandy-yan/remake/cmd"

func main() {
	cmd.Execute()
}

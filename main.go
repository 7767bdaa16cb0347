package main

import "reelproxy/cmd"

func main() {
	cmd.Execute()
}

package main

import "mulligan/cmd"

func main() {
	cmd.Execute()
}

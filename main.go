package main

import "lot-sync/cmd"

func main() {
	cmd.Execute()
}

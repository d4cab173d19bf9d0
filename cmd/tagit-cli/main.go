package main

import "tagit/cmd/tagit-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/FlorianRuen/devhub/cmd"

func main() {
	cmd.Execute()
}

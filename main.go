package main

import "github.com/iksnae/chatlegis/cmd"

func main() {
	cmd.Execute()
}

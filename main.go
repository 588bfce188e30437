package main

import "taskroll/cmd"

func main() {
	cmd.Execute()
}

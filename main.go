package main

import "github.com/sravya/xtrack/cmd"

func main() {
	cmd.Execute()
}

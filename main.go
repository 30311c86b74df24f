package main

import "system-mirror/cmd"

func main() {
	cmd.Execute()
}

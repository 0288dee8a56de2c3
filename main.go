package main

import "community-app/cmd"

func main() {
	cmd.Execute()
}

package main

import "thoreinstein.com/autopr/cmd"

func main() {
	cmd.Execute()
}

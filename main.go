package main

import "github.com/kebairia/fbm/cmd"

func main() {
	cmd.Execute()
}

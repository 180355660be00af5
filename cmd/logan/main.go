package main

import "github.com/dam4rus/logan/internal/cmd"

func main() {
	cmd.Execute()
}

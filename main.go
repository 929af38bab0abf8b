package main

import "github.com/Alturino/salesrep/cmd"

func main() {
	cmd.Start()
}

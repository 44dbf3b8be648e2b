package main

import "github.com/naka-gawa/site-stats/cmd"

func main() {
	cmd.Execute()
}

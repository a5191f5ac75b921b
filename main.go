package main

import "github.com/dkovalev83/ozon-scrap/cmd"

func main() {
	cmd.Execute()
}

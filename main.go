package main

import "github.com/xBurningGiraffe/rustrecon/cmd"

func main() {
	cmd.Execute()
}

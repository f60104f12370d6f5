package main

import "arboric/canopy/cmd"

func main() {
	cmd.Execute()
}

package main

import "kijiji-rentals/cmd"

func main() {
	cmd.Execute()
}

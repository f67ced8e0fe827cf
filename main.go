package main

import "github.com/junaidrashid-git/canteen-api/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Rorical/MediBot/cmd"

func main() {
	cmd.Execute()
}

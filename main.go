package main

import "github.com/frahmantamala/attendance-tracking/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/openswoop/taucourses/cmd"

func main() {
	cmd.Execute()
}

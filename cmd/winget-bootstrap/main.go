package main

import "github.com/oshokin/winget-bootstrap/cmd/winget-bootstrap/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/wajahatashraf/gcp-setup/cmd/gcpsetup/cmd"

func main() {
	cmd.Execute()
}

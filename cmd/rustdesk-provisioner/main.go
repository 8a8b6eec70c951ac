package main

import "github.com/deskops/rustdesk-provisioner/cmd/rustdesk-provisioner/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/guestdesk/concierge/cmd"

func main() {
	cmd.Execute()
}

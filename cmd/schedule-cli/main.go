package main

import "schedule-backend/cmd/schedule-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/pfrederiksen/event-ingest/internal/cli"

func main() {
	cli.Execute()
}

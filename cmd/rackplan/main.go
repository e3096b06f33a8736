package main

import "go.gazette.dev/rackplan/cmd/rackplan/rackplancmd"

func main() {
	rackplancmd.Execute()
}

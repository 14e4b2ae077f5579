package main

import "github.com/courtforms/formschema/internal/cli"

func main() {
	cli.Execute()
}

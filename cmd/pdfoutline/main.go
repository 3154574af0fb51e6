package main

import "github.com/dgallion1/pdfoutline/internal/cli"

func main() {
	cli.Execute()
}

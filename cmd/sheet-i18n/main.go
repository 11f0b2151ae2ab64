package main

import "sheet-i18n/internal/cli"

func main() {
	cli.Execute()
}

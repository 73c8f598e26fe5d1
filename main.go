package main

import "github.com/frahmantamala/catalog-management/cmd"

func main() {
	cmd.Execute()
}

package main

import "petprogress/cmd/pp/root"

func main() {
	root.Execute()
}

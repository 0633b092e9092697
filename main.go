package main

import "github.com/hsharma0052/etlverify/cmd"

func main() {
	cmd.Execute()
}

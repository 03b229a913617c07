package main

import "github.com/theirongolddev/cashraaga/cmd"

func main() {
	cmd.Execute()
}

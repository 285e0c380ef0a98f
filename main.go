package main

import (
	"fmt"
	"os"

	"github.com/jensroland/git-blamebot/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "--version" {
		fmt.Println("git-blamebot", version)
		return
	}
	cmd.RunBlame(os.Args[1:])
}

package main

import "github.com/Jepvid/HM64Updatescripts/cmd/hm64-updater/cmd"

func main() {
	cmd.Execute()
}

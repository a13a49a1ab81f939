package main

import "github.com/wago/wdx-core/cmd/wdxcore"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	wdxcore.SetVersion(version)
	wdxcore.Execute()
}

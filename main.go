// main is the entry point for the storesync CLI.
package main

import (
	"github.com/huangsam/storesync/cmd"
	"github.com/huangsam/storesync/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("storesync failed", err)
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func main() {
	cfg := &config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

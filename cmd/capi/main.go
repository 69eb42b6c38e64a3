package main

import (
	"github.com/celerypayroll/capi/internal/cli"
	"github.com/celerypayroll/capi/internal/common/logtrace"
)

func main() {
	logtrace.InitLogger("", true)
	cli.Execute()
}

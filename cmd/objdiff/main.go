package main

import "github.com/objdiff/objdiff-go/internal/objdiffcmd"

func main() {
	objdiffcmd.Execute()
}

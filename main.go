package main

import (
	"github.com/nilebit/regionstore/regionmain"
)

func main() {
	regionmain.Main()
}

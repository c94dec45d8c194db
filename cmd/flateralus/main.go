// Command flateralus lists, inspects, renders and runs the built-in
// animations.
//
//	flateralus list
//	flateralus manifest spiral
//	flateralus render gridfield --frames 30 --out shots/
//	flateralus run spiral --fps 60
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

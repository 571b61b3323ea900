// Package main is the entry point of testskel, a generator of xUnit test skeletons for
// C# sources.
package main

import "testskel/cmd"

func main() {
	cmd.Execute()
}

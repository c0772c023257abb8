// Package main is the entry point for Subwave.
package main

func main() {
	Execute()
}

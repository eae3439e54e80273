package main

import "fmt"

func main() {
	fmt.Println("This is a test file for RemindMe")

	// @TODO: Implement error handling for the parser
	// @labels: enhancement, bug
	// @body: The current parser doesn't handle errors gracefully.
	// We need to improve error handling and provide better diagnostics.

	/*
	 * @TODO: Add support for Dart language
	 * @body: Dart shares the C comment syntax.
	 * @assignees: octocat
	 * @milestones: v1.0
	 */

	// A regular comment without markers.
	doSomething()
}

func doSomething() {
	// @todo: Add unit tests for this function
	// @labels: testing
}

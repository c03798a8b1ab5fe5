// Package cli defines the shelver command tree.
//
// The root command opens the interactive browser. The headless commands
// (libraries, list, series-books) connect, drive the same collection loaders
// the browser uses until the collection is exhausted or --pages is reached,
// and print text, JSON or YAML. --match narrows what is printed, not what is
// fetched.
package cli

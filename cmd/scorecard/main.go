// Command scorecard runs the scorecard core over JSON files: build pages from
// a catalog, score responses, aggregate a result and lay out or draw it.
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

// Command fhirview previews FHIR resources through workspace templates.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fhirview: %v\n", err)
		os.Exit(1)
	}
}

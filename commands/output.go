package commands

import (
	"fmt"
	"io"
)

// printKV writes one aligned "key value" line.
func printKV(w io.Writer, key string, value interface{}) {
	fmt.Fprintf(w, "%-24s %v\n", key, value)
}

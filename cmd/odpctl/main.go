// Command odpctl works with ODP inventory files offline: it summarizes and
// validates them, exports filtered subsets, and generates mock datasets.
//
// Usage:
//
//	odpctl summary --file data/odp.xlsx --area Kedaton
//	odpctl export --file data/odp.csv --status Critical --format xlsx
//	odpctl genmock --out data/mock/odp.csv --rows 500 --seed 7
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

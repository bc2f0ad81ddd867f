// Command csvclean normalizes CSV headers, drops unwanted columns, splits one
// column in two, and writes the result to a CSV file or a database table.
//
//	csvclean run --recipe customer --input Customer.csv
//	csvclean run --config configs/pricing.yaml --sink sqlite --dsn clean.db --table pricing
//	csvclean validate --config configs/customer.json
//	csvclean headers --input Customer.csv
package main

import (
	"os"

	// register all backends with the storage factory.
	_ "csvclean/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

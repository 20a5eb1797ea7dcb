// Command flashstore runs the storefront server.
package main

import (
	"fmt"
	"os"

	"flashstore/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	if err := application.Start(); err != nil {
		application.Logger.Error("server exited with error")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

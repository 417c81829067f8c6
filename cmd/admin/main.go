// Command admin runs maintenance tasks against the PocketPilot store.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

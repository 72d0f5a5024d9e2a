// Command explore indexes and searches timestamped transcripts.
package main

import "github.com/ivrit-ai/explore/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}

// cmd/assistant/main.go
package main

import "voice-assistant/internal/cli"

func main() {
	cli.Execute()
}

// Command pulsechat is a terminal client and server for multi-conversation
// workplace chat.
package main

import "github.com/diogo/pulsechat/internal/commands"

func main() {
	commands.Execute()
}

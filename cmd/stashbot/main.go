// Command stashbot runs the Telegram bot that sorts personal messages into
// credentials, passwords, emails, links and notes.
//
// Usage:
//
//	stashbot            start the bot (same as "stashbot run")
//	stashbot classify   print what would be extracted from a text
package main

func main() {
	Execute()
}

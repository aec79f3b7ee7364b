package main

import "finterm/internal/app"

func main() {
	app.Execute()
}

package main

import "chandana/internal/app"

func main() {
	app.Main()
}

package main

import "clipstream_backend/internal/app"

func main() {
	app.Run()
}

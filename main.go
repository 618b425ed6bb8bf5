package main

import (
	"os"

	"github.com/rollcall-rfid/rollcall/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

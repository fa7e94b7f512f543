// cmd/main.go
package main

import (
	"go-bank-console/app"
)

func main() {
	app.Run()
}

package main

import "github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/cli"

func main() {
	cli.Execute()
}

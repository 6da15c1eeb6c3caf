package main

import "wallet-credit-score/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/fintech-enterprise/expense-tracker/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/fieldserve/reimbursement/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/shouni/go-clinic-scraper/cmd"

func main() {
	cmd.Execute()
}

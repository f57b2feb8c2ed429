package main

import "github.com/MiMa6/rag-search-system/internal/cli"

func main() {
	cli.Execute()
}

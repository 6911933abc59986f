package main

import "github.com/MeKo-Tech/mapboxutil/internal/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/NVIDIA/request-monitor/pkg/cli"

func main() {
	cli.Execute()
}

package main

import (
	"github.com/abhishekg1-gl/langgraph/internal/server"
	"github.com/abhishekg1-gl/langgraph/internal/util"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	"github.com/abhishekg1-gl/langgraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
